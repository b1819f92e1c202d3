package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/speechbridge/internal/queue"
)

type jobPoller interface {
	Poll(ctx context.Context, handle models.JobHandle, opts stt.PollOptions) (*models.TranscriptionJob, error)
}

type resultStore interface {
	Save(ctx context.Context, job *models.TranscriptionJob) error
}

type notifyEnqueuer interface {
	EnqueueTranscriptionNotify(ctx context.Context, payload queue.TranscriptionNotifyPayload) error
}

// TranscriptionWorker polls started jobs in the background and stores their
// final state.
type TranscriptionWorker struct {
	poller  jobPoller
	results resultStore
	notify  notifyEnqueuer
	opts    stt.PollOptions
}

// NewTranscriptionWorker builds the poll worker. notify may be nil, in which
// case callback URLs are ignored.
func NewTranscriptionWorker(poller jobPoller, results resultStore, notify notifyEnqueuer, opts stt.PollOptions) *TranscriptionWorker {
	return &TranscriptionWorker{poller: poller, results: results, notify: notify, opts: opts}
}

// ProcessTask handles queue.TypeTranscriptionPoll. Query failures and client
// timeouts return an error so the task is retried later; the backend job
// keeps running either way.
func (w *TranscriptionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranscriptionPollPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.JobName == "" {
		return fmt.Errorf("payload missing job_name: %w", asynq.SkipRetry)
	}

	opts := w.opts
	if payload.MaxWaitMs > 0 {
		opts.MaxWait = time.Duration(payload.MaxWaitMs) * time.Millisecond
	}
	if payload.IntervalMs > 0 {
		opts.Interval = time.Duration(payload.IntervalMs) * time.Millisecond
	}

	slog.Info("polling transcription job", "job_name", payload.JobName)

	job, err := w.poller.Poll(ctx, models.JobHandle{JobName: payload.JobName, ObjectKey: payload.ObjectKey}, opts)
	if err != nil {
		return fmt.Errorf("poll %s: %w", payload.JobName, err)
	}

	if job.Status == models.JobStatusTimeout {
		slog.Info("transcription job still running", "job_name", job.JobName, "queries", job.Queries)
		return fmt.Errorf("job %s still running after %s", job.JobName, opts.MaxWait)
	}

	if err := w.results.Save(ctx, job); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	slog.Info("transcription job finished", "job_name", job.JobName, "status", job.Status)

	if payload.CallbackURL != "" && w.notify != nil {
		err := w.notify.EnqueueTranscriptionNotify(ctx, queue.TranscriptionNotifyPayload{
			CallbackURL: payload.CallbackURL,
			Job:         *job,
		})
		if err != nil {
			slog.Error("failed to enqueue callback", "job_name", job.JobName, "error", err)
		}
	}
	return nil
}
