package stt

import (
	"context"

	"github.com/nikhilbhutani/speechbridge/internal/backend"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// ControlPlane is the part of the backend API the transcription flow uses.
type ControlPlane interface {
	CreateUploadURL(ctx context.Context, filename, contentType string) (*models.UploadSlot, error)
	StartTranscription(ctx context.Context, objectKey string) (string, error)
	StatusQuerier
}

// StatusQuerier reports the current state of a transcription job.
type StatusQuerier interface {
	TranscriptionResult(ctx context.Context, jobName string) (*backend.TranscribeResult, error)
}

// Uploader writes bytes to a presigned URL.
type Uploader interface {
	Put(ctx context.Context, url string, data []byte, contentType string) error
}

const (
	StepPresign = "presign"
	StepUpload  = "upload"
	StepStart   = "start"
	StepQuery   = "query"
)
