package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/pipeline"
)

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req models.SynthesisRequest) (*models.SynthesizedAudio, error)
}

type SynthesisHandler struct {
	synth SpeechSynthesizer
}

func NewSynthesisHandler(synth SpeechSynthesizer) *SynthesisHandler {
	return &SynthesisHandler{synth: synth}
}

// Synthesize converts text to audio and streams the bytes back.
func (h *SynthesisHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req models.SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.synth.Synthesize(r.Context(), req)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("X-Audio-Url", result.AudioURL)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Audio)
}

type voiceCatalog struct {
	Voices   []string                `json:"voices"`
	Engines  []models.Engine         `json:"engines"`
	Formats  []models.AudioFormat    `json:"formats"`
	Defaults models.SynthesisRequest `json:"defaults"`
}

func (h *SynthesisHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, voiceCatalog{
		Voices:  models.Voices,
		Engines: models.Engines,
		Formats: models.Formats,
		Defaults: models.SynthesisRequest{
			VoiceID: models.DefaultVoice,
			Engine:  models.DefaultEngine,
			Format:  models.DefaultFormat,
		},
	})
}

// Capabilities reports the flags resolved at startup.
func Capabilities(caps pipeline.Capabilities) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, caps)
	}
}
