package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/audio"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
)

// Defaults for recorder payloads, which arrive without a filename.
const (
	RecordingFilename    = recordingName + ".wav"
	RecordingContentType = audio.TypeWAV

	recordingName = "grabacion"
)

// Normalizer converts a raw stream payload in place.
type Normalizer interface {
	Normalize(ctx context.Context, payload *models.AudioPayload) (*audio.Conversion, error)
}

// Submitter uploads a payload and starts its transcription job.
type Submitter interface {
	Submit(ctx context.Context, payload *models.AudioPayload) (*models.JobHandle, error)
}

// JobPoller observes transcription jobs.
type JobPoller interface {
	Poll(ctx context.Context, handle models.JobHandle, opts stt.PollOptions) (*models.TranscriptionJob, error)
	Check(ctx context.Context, jobName string) (*models.TranscriptionJob, error)
}

// Recorder keeps submission history. Failures are logged and never abort a
// submission.
type Recorder interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	UpdateResult(ctx context.Context, job *models.TranscriptionJob) error
}

// Transcriber runs classify, normalize, presign, upload, start and poll for
// one payload. Each step starts only after the previous one succeeded.
type Transcriber struct {
	normalizer Normalizer
	submitter  Submitter
	poller     JobPoller
	recorder   Recorder
}

type Option func(*Transcriber)

// WithRecorder stores every submission and its final result.
func WithRecorder(r Recorder) Option {
	return func(t *Transcriber) {
		if r != nil {
			t.recorder = r
		}
	}
}

func NewTranscriber(normalizer Normalizer, submitter Submitter, poller JobPoller, opts ...Option) *Transcriber {
	t := &Transcriber{
		normalizer: normalizer,
		submitter:  submitter,
		poller:     poller,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Submission is a started job together with what was uploaded.
type Submission struct {
	Handle     models.JobHandle  `json:"handle"`
	Filename   string            `json:"filename"`
	MediaType  string            `json:"content_type"`
	SizeBytes  int               `json:"size_bytes"`
	Conversion *audio.Conversion `json:"conversion,omitempty"`
}

// Outcome is the observed end state of a transcription submission.
type Outcome struct {
	Submission
	Job     *models.TranscriptionJob `json:"job"`
	Message string                   `json:"message"`
}

// defaultFilename names an unnamed payload after its declared type, falling
// back to the recorder's WAV name when the type is missing or unknown.
func defaultFilename(declared string) string {
	if ext := audio.ExtensionFor(audio.Classify("", declared)); ext != "" {
		return recordingName + ext
	}
	return RecordingFilename
}

// Prepare applies recorder defaults, classifies the payload and normalizes
// raw streams. The payload is modified in place.
func (t *Transcriber) Prepare(ctx context.Context, payload *models.AudioPayload) (*audio.Conversion, error) {
	if len(payload.Data) == 0 {
		return nil, models.StepError(models.KindPrecondition, "classify", models.ErrEmptyInput,
			"audio payload is empty", nil)
	}

	if strings.TrimSpace(payload.Filename) == "" {
		payload.Filename = defaultFilename(payload.ContentType)
		if payload.ContentType == "" {
			payload.ContentType = RecordingContentType
		}
	}
	payload.ContentType = audio.Classify(payload.Filename, payload.ContentType)

	if !audio.NeedsNormalization(payload.Filename, payload.ContentType) {
		return nil, nil
	}

	conv, err := t.normalizer.Normalize(ctx, payload)
	if err != nil {
		return nil, err
	}
	slog.Info("audio normalized",
		"mode", conv.Mode,
		"from", conv.From,
		"to", conv.To,
		"filename", payload.Filename,
	)
	return conv, nil
}

// Submit prepares the payload and starts a transcription job without waiting
// for it.
func (t *Transcriber) Submit(ctx context.Context, payload *models.AudioPayload) (*Submission, error) {
	conv, err := t.Prepare(ctx, payload)
	if err != nil {
		return nil, err
	}

	handle, err := t.submitter.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	sub := &Submission{
		Handle:     *handle,
		Filename:   payload.Filename,
		MediaType:  payload.ContentType,
		SizeBytes:  payload.Size(),
		Conversion: conv,
	}
	t.record(ctx, sub)
	return sub, nil
}

// Transcribe submits the payload and polls the job until it finishes or the
// poll deadline passes. TIMEOUT, FAILED and NOT_FOUND are returned as outcomes,
// not errors.
func (t *Transcriber) Transcribe(ctx context.Context, payload *models.AudioPayload, opts stt.PollOptions) (*Outcome, error) {
	sub, err := t.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	job, err := t.poller.Poll(ctx, sub.Handle, opts)
	if err != nil {
		return nil, err
	}
	t.Finish(ctx, job)

	return &Outcome{Submission: *sub, Job: job, Message: StatusMessage(job)}, nil
}

// Recheck issues one status query for a previously started job.
func (t *Transcriber) Recheck(ctx context.Context, jobName string) (*models.TranscriptionJob, error) {
	job, err := t.poller.Check(ctx, jobName)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		t.Finish(ctx, job)
	}
	return job, nil
}

// Poll waits on an already started job.
func (t *Transcriber) Poll(ctx context.Context, handle models.JobHandle, opts stt.PollOptions) (*models.TranscriptionJob, error) {
	job, err := t.poller.Poll(ctx, handle, opts)
	if err != nil {
		return nil, err
	}
	t.Finish(ctx, job)
	return job, nil
}

// Finish records a job's observed end state in history.
func (t *Transcriber) Finish(ctx context.Context, job *models.TranscriptionJob) {
	if err := t.recorder.UpdateResult(ctx, job); err != nil {
		slog.Warn("failed to record transcription result", "job_name", job.JobName, "error", err)
	}
}

func (t *Transcriber) record(ctx context.Context, sub *Submission) {
	now := time.Now().UTC()
	err := t.recorder.CreateSubmission(ctx, &models.Submission{
		ID:          uuid.New(),
		JobName:     sub.Handle.JobName,
		ObjectKey:   sub.Handle.ObjectKey,
		Filename:    sub.Filename,
		ContentType: sub.MediaType,
		SizeBytes:   int64(sub.SizeBytes),
		Normalized:  sub.Conversion != nil,
		Status:      models.JobStatusRunning,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Warn("failed to record submission", "job_name", sub.Handle.JobName, "error", err)
	}
}

type nopRecorder struct{}

func (nopRecorder) CreateSubmission(context.Context, *models.Submission) error { return nil }

func (nopRecorder) UpdateResult(context.Context, *models.TranscriptionJob) error { return nil }
