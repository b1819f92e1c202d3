package stt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nikhilbhutani/speechbridge/internal/backend"
	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/audio"
)

// Orchestrator uploads audio through a presigned slot and starts a
// transcription job. Each step runs only after the previous one succeeded;
// nothing is retried.
type Orchestrator struct {
	api   ControlPlane
	store Uploader
}

func NewOrchestrator(api ControlPlane, store Uploader) *Orchestrator {
	return &Orchestrator{api: api, store: store}
}

// Submit runs presign, upload and start for one payload.
func (o *Orchestrator) Submit(ctx context.Context, payload *models.AudioPayload) (*models.JobHandle, error) {
	if !audio.Accepted(payload.ContentType) {
		return nil, models.StepError(models.KindPrecondition, StepPresign, models.ErrUnsupportedFormat,
			fmt.Sprintf("content type %q is not accepted for transcription", payload.ContentType), nil)
	}

	slot, err := o.api.CreateUploadURL(ctx, payload.Filename, payload.ContentType)
	if err != nil {
		return nil, backend.StepFailure(StepPresign, models.ErrPresign, err)
	}
	if strings.TrimSpace(slot.UploadURL) == "" {
		return nil, backend.MissingField(StepPresign, models.ErrPresign, "upload_url")
	}
	if strings.TrimSpace(slot.ObjectKey) == "" {
		return nil, backend.MissingField(StepPresign, models.ErrPresign, "s3_key")
	}

	slog.Info("uploading audio",
		"filename", payload.Filename,
		"content_type", payload.ContentType,
		"size", humanize.Bytes(uint64(payload.Size())),
		"object_key", slot.ObjectKey,
	)

	if err := o.store.Put(ctx, slot.UploadURL, payload.Data, payload.ContentType); err != nil {
		return nil, backend.StepFailure(StepUpload, models.ErrUpload, err)
	}

	jobName, err := o.api.StartTranscription(ctx, slot.ObjectKey)
	if err != nil {
		return nil, backend.StepFailure(StepStart, models.ErrStart, err)
	}
	if strings.TrimSpace(jobName) == "" {
		return nil, backend.MissingField(StepStart, models.ErrStart, "job_name")
	}

	slog.Info("transcription started", "job_name", jobName, "object_key", slot.ObjectKey)
	return &models.JobHandle{JobName: jobName, ObjectKey: slot.ObjectKey}, nil
}
