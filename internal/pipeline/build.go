package pipeline

import (
	"github.com/nikhilbhutani/speechbridge/internal/backend"
	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/audio"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/tts"
	"github.com/nikhilbhutani/speechbridge/internal/storage"
)

// Build wires a Transcriber and a synthesis Requestor against the configured
// backend endpoint and object storage.
func Build(cfg *config.Config, opts ...Option) (*Transcriber, *tts.Requestor) {
	api := backend.NewClient(cfg.Backend)
	store := storage.NewHTTPTransfer(cfg.Storage)

	transcriber := NewTranscriber(
		audio.NewNormalizer(cfg.Transcode),
		stt.NewOrchestrator(api, store),
		stt.NewPoller(api),
		opts...,
	)
	return transcriber, tts.NewRequestor(api, store)
}
