package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

const stepNormalize = "normalize"

// Conversion modes.
const (
	ModeRepackaged = "repackaged"
	ModeReencoded  = "reencoded"
)

// Conversion describes how a payload was normalized.
type Conversion struct {
	Mode string       `json:"mode"`
	From string       `json:"from"`
	To   string       `json:"to"`
	Logs []CommandLog `json:"logs"`
}

// Normalizer rewraps raw AAC streams into an M4A container, falling back to an
// MP3 re-encode when stream copy fails.
type Normalizer struct {
	ffmpegPath string
	bitrate    string
	tempDir    string
	runner     commandRunner
	lookPath   func(file string) (string, error)
	createTemp func(dir, pattern string) (*os.File, error)
	remove     func(name string) error
	stat       func(name string) (os.FileInfo, error)
	readFile   func(name string) ([]byte, error)
}

func NewNormalizer(cfg config.TranscodeConfig) *Normalizer {
	bitrate := cfg.FallbackBitrate
	if bitrate == "" {
		bitrate = "192k"
	}
	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Normalizer{
		ffmpegPath: ffmpeg,
		bitrate:    bitrate,
		tempDir:    cfg.TempDir,
		runner:     &execRunner{},
		lookPath:   exec.LookPath,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		stat:       os.Stat,
		readFile:   os.ReadFile,
	}
}

// Available reports whether the transcoder binary can be resolved.
func (n *Normalizer) Available() bool {
	_, err := n.lookPath(n.ffmpegPath)
	return err == nil
}

// Normalize converts payload in place. On failure the payload is untouched.
// Temporary files from both attempts are removed on every path.
func (n *Normalizer) Normalize(ctx context.Context, payload *models.AudioPayload) (*Conversion, error) {
	tool, err := n.lookPath(n.ffmpegPath)
	if err != nil {
		return nil, models.StepError(models.KindPrecondition, stepNormalize, models.ErrToolUnavailable,
			fmt.Sprintf("%s is required to accept .aac audio; install it on the host", n.ffmpegPath), err)
	}

	inPath, err := n.writeInput(payload.Data)
	if err != nil {
		return nil, err
	}
	defer n.cleanup(inPath)

	conv := &Conversion{From: payload.ContentType}

	data, log, repackErr := n.convert(ctx, tool, ".m4a", func(out string) []string {
		return buildRepackArgs(inPath, out)
	})
	conv.Logs = append(conv.Logs, log)
	if repackErr == nil {
		conv.Mode = ModeRepackaged
		conv.To = TypeMP4
		payload.Replace(data, swapExtension(payload.Filename, ".m4a"), TypeMP4)
		return conv, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("normalize audio: %w", ctx.Err())
	}

	slog.Warn("stream copy to m4a failed, re-encoding to mp3",
		"filename", payload.Filename,
		"exit_code", log.ExitCode,
		"error", repackErr,
	)

	data, log, encodeErr := n.convert(ctx, tool, ".mp3", func(out string) []string {
		return buildReencodeArgs(inPath, out, n.bitrate)
	})
	conv.Logs = append(conv.Logs, log)
	if encodeErr == nil {
		conv.Mode = ModeReencoded
		conv.To = TypeMPEG
		payload.Replace(data, swapExtension(payload.Filename, ".mp3"), TypeMPEG)
		return conv, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("normalize audio: %w", ctx.Err())
	}

	return nil, models.StepError(models.KindPrecondition, stepNormalize, models.ErrConversionFailed,
		fmt.Sprintf("could not convert .aac audio: %s", conversionDetail(log, encodeErr)),
		errors.Join(repackErr, encodeErr))
}

// convert runs one ffmpeg attempt into a fresh temp output file and returns
// its bytes. Success requires exit status 0 and a non-empty output file.
func (n *Normalizer) convert(ctx context.Context, tool, ext string, args func(out string) []string) ([]byte, CommandLog, error) {
	out, err := n.createTemp(n.tempDir, "speechbridge-out-*"+ext)
	if err != nil {
		return nil, CommandLog{Command: tool}, fmt.Errorf("create output temp file: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer n.cleanup(outPath)

	argv := args(outPath)
	res, runErr := n.runner.Run(ctx, tool, argv...)
	log := CommandLog{
		Command:  tool,
		Args:     argv,
		ExitCode: res.ExitCode,
		Stderr:   strings.TrimSpace(res.Stderr),
	}
	if runErr != nil {
		return nil, log, fmt.Errorf("%s exited with %d: %w", filepath.Base(tool), res.ExitCode, runErr)
	}

	info, err := n.stat(outPath)
	if err != nil {
		return nil, log, fmt.Errorf("transcoder output missing: %w", err)
	}
	if info.Size() == 0 {
		return nil, log, errors.New("transcoder produced an empty file")
	}

	data, err := n.readFile(outPath)
	if err != nil {
		return nil, log, fmt.Errorf("read transcoder output: %w", err)
	}
	return data, log, nil
}

func (n *Normalizer) writeInput(data []byte) (string, error) {
	f, err := n.createTemp(n.tempDir, "speechbridge-in-*.aac")
	if err != nil {
		return "", fmt.Errorf("create input temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		n.cleanup(path)
		return "", fmt.Errorf("write input temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		n.cleanup(path)
		return "", fmt.Errorf("close input temp file: %w", err)
	}
	return path, nil
}

// cleanup removes a temp file; failures are logged and otherwise ignored.
func (n *Normalizer) cleanup(path string) {
	if err := n.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

// buildRepackArgs copies the AAC stream into an MP4 container without re-encoding.
func buildRepackArgs(inPath, outPath string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", inPath,
		"-c:a", "copy",
		outPath,
	}
}

// buildReencodeArgs transcodes to MP3 at a fixed bitrate.
func buildReencodeArgs(inPath, outPath, bitrate string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", inPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", bitrate,
		outPath,
	}
}

func swapExtension(filename, ext string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		return "audio" + ext
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

func conversionDetail(log CommandLog, err error) string {
	if log.Stderr != "" {
		return log.Stderr
	}
	return err.Error()
}
