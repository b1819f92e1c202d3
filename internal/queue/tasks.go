package queue

import "github.com/nikhilbhutani/speechbridge/internal/models"

const (
	TypeTranscriptionPoll   = "transcription:poll"
	TypeTranscriptionNotify = "transcription:notify"
)

// TranscriptionPollPayload asks a worker to observe a started job until it
// finishes. Zero durations fall back to the worker's configured poll options.
type TranscriptionPollPayload struct {
	JobName     string `json:"job_name"`
	ObjectKey   string `json:"s3_key,omitempty"`
	MaxWaitMs   int64  `json:"max_wait_ms,omitempty"`
	IntervalMs  int64  `json:"interval_ms,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// TranscriptionNotifyPayload delivers a finished job to a callback URL.
type TranscriptionNotifyPayload struct {
	CallbackURL string                  `json:"callback_url"`
	Job         models.TranscriptionJob `json:"job"`
}
