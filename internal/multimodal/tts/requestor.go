package tts

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nikhilbhutani/speechbridge/internal/backend"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// Requestor turns text into audio: one synthesis call, then a GET of the
// returned audio URL.
type Requestor struct {
	api     Synthesizer
	fetcher Fetcher
}

func NewRequestor(api Synthesizer, fetcher Fetcher) *Requestor {
	return &Requestor{api: api, fetcher: fetcher}
}

// Synthesize validates req, requests synthesis and fetches the audio. The
// returned content type follows req.Format, not the fetched response.
func (r *Requestor) Synthesize(ctx context.Context, req models.SynthesisRequest) (*models.SynthesizedAudio, error) {
	req, err := Normalize(req)
	if err != nil {
		return nil, err
	}

	res, err := r.api.Synthesize(ctx, req)
	if err != nil {
		return nil, backend.StepFailure(StepSynthesize, models.ErrSynthesize, err)
	}
	if strings.TrimSpace(res.AudioURL) == "" {
		return nil, backend.MissingField(StepSynthesize, models.ErrNoAudioURL, "audio_url")
	}

	audio, err := r.fetcher.Get(ctx, res.AudioURL)
	if err != nil {
		return nil, backend.StepFailure(StepFetch, models.ErrFetch, err)
	}

	slog.Info("speech synthesized",
		"voice_id", req.VoiceID,
		"engine", req.Engine,
		"format", req.Format,
		"size", humanize.Bytes(uint64(len(audio))),
	)

	return &models.SynthesizedAudio{
		Audio:       audio,
		ContentType: req.Format.ContentType(),
		AudioURL:    res.AudioURL,
	}, nil
}

// Normalize trims the text, fills empty parameters with defaults and rejects
// values outside the catalog. It never touches the network.
func Normalize(req models.SynthesisRequest) (models.SynthesisRequest, error) {
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return req, models.StepError(models.KindPrecondition, StepValidate, models.ErrEmptyInput,
			"text is empty", nil)
	}

	if req.VoiceID == "" {
		req.VoiceID = models.DefaultVoice
	}
	if req.Engine == "" {
		req.Engine = models.DefaultEngine
	}
	if req.Format == "" {
		req.Format = models.DefaultFormat
	}

	switch {
	case !slices.Contains(models.Voices, req.VoiceID):
		return req, invalid("voice_id", req.VoiceID)
	case !slices.Contains(models.Engines, req.Engine):
		return req, invalid("engine", string(req.Engine))
	case !slices.Contains(models.Formats, req.Format):
		return req, invalid("format", string(req.Format))
	}
	return req, nil
}

func invalid(field, value string) *models.PipelineError {
	return models.StepError(models.KindPrecondition, StepValidate, models.ErrInvalidParameter,
		fmt.Sprintf("unsupported %s %q", field, value), nil)
}
