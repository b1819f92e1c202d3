package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nikhilbhutani/speechbridge/internal/auth"
	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/speechbridge/internal/pipeline"
)

const usage = `usage: speechctl <command> [flags]

commands:
  transcribe [-max-wait 120s] [-interval 2s] <file>
  status <job-name>
  synthesize [-voice Lucia] [-engine neural] [-format mp3] [-o out.mp3] <text>
  token [-subject cli] [-ttl 24h]
`

var errUsage = errors.New("invalid usage")

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, pipeline.ErrorMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch args[0] {
	case "transcribe":
		return transcribe(ctx, cfg, args[1:], out)
	case "status":
		return status(ctx, cfg, args[1:], out)
	case "synthesize":
		return synthesize(ctx, cfg, args[1:], out)
	case "token":
		return token(cfg, args[1:], out)
	default:
		return errUsage
	}
}

func transcribe(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	opts := stt.PollOptionsFrom(cfg.Poll)
	fs := flag.NewFlagSet("transcribe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.DurationVar(&opts.MaxWait, "max-wait", opts.MaxWait, "maximum time to wait for the job")
	fs.DurationVar(&opts.Interval, "interval", opts.Interval, "time between status queries")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	transcriber, _ := pipeline.Build(cfg)
	payload := &models.AudioPayload{Data: data, Filename: filepath.Base(path)}

	fmt.Fprintf(out, "Uploading %s (%s)...\n", payload.Filename, humanize.Bytes(uint64(len(data))))
	outcome, err := transcriber.Transcribe(ctx, payload, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Job: %s\nStatus: %s\n%s\n", outcome.Handle.JobName, outcome.Job.Status, outcome.Message)
	if outcome.Job.Transcript != "" {
		fmt.Fprintf(out, "\n%s\n", outcome.Job.Transcript)
	}
	return nil
}

func status(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) != 1 || args[0] == "" {
		return errUsage
	}

	transcriber, _ := pipeline.Build(cfg)
	job, err := transcriber.Recheck(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Job: %s\nStatus: %s\n%s\n", job.JobName, job.Status, pipeline.StatusMessage(job))
	if job.Transcript != "" {
		fmt.Fprintf(out, "\n%s\n", job.Transcript)
	}
	return nil
}

func synthesize(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	var (
		req    models.SynthesisRequest
		engine string
		format string
		output string
	)
	fs := flag.NewFlagSet("synthesize", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&req.VoiceID, "voice", models.DefaultVoice, "voice id")
	fs.StringVar(&engine, "engine", string(models.DefaultEngine), "neural or standard")
	fs.StringVar(&format, "format", string(models.DefaultFormat), "mp3 or ogg_vorbis")
	fs.StringVar(&output, "o", "", "output file (default speech.<ext>)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	req.Text = fs.Arg(0)
	req.Engine = models.Engine(engine)
	req.Format = models.AudioFormat(format)

	_, requestor := pipeline.Build(cfg)
	audio, err := requestor.Synthesize(ctx, req)
	if err != nil {
		return err
	}

	if output == "" {
		output = "speech.mp3"
		if req.Format == models.FormatOggVorbis {
			output = "speech.ogg"
		}
	}
	if err := os.WriteFile(output, audio.Audio, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Fprintf(out, "Wrote %s (%s, %s)\n", output, audio.ContentType, humanize.Bytes(uint64(len(audio.Audio))))
	return nil
}

func token(cfg *config.Config, args []string, out io.Writer) error {
	var (
		subject string
		ttl     time.Duration
	)
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&subject, "subject", "cli", "token subject")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is not set")
	}

	signed, err := auth.IssueToken(cfg.Auth.JWTSecret, subject, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(out, signed)
	return nil
}
