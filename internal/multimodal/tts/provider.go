package tts

import (
	"context"

	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// Synthesizer is the synthesis half of the backend control plane.
type Synthesizer interface {
	Synthesize(ctx context.Context, req models.SynthesisRequest) (*models.SynthesisResult, error)
}

// Fetcher downloads bytes from a pre-authorized URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

const (
	StepValidate   = "validate"
	StepSynthesize = "synthesize"
	StepFetch      = "fetch"
)
