package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/speechbridge/internal/queue"
)

type stubPoller struct {
	job    *models.TranscriptionJob
	err    error
	handle models.JobHandle
	opts   stt.PollOptions
}

func (s *stubPoller) Poll(ctx context.Context, handle models.JobHandle, opts stt.PollOptions) (*models.TranscriptionJob, error) {
	s.handle = handle
	s.opts = opts
	return s.job, s.err
}

type savedResults struct {
	jobs []*models.TranscriptionJob
}

func (s *savedResults) Save(ctx context.Context, job *models.TranscriptionJob) error {
	s.jobs = append(s.jobs, job)
	return nil
}

func pollTask(t *testing.T, payload queue.TranscriptionPollPayload) *asynq.Task {
	t.Helper()
	task, err := queue.NewTask(queue.TypeTranscriptionPoll, payload)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	return task
}

func TestProcessTaskStoresCompletedJob(t *testing.T) {
	poller := &stubPoller{job: &models.TranscriptionJob{JobName: "job-1", Status: models.JobStatusCompleted, Transcript: "hola mundo"}}
	results := &savedResults{}
	w := NewTranscriptionWorker(poller, results, nil, stt.DefaultPollOptions())

	err := w.ProcessTask(context.Background(), pollTask(t, queue.TranscriptionPollPayload{JobName: "job-1", MaxWaitMs: 30000}))
	if err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}
	if poller.handle.JobName != "job-1" || poller.opts.MaxWait != 30*time.Second || poller.opts.Interval != stt.DefaultInterval {
		t.Fatalf("poll called with %+v %+v", poller.handle, poller.opts)
	}
	if len(results.jobs) != 1 || results.jobs[0].Transcript != "hola mundo" {
		t.Fatalf("saved = %+v", results.jobs)
	}
}

func TestProcessTaskUsesMillisecondOptions(t *testing.T) {
	poller := &stubPoller{job: &models.TranscriptionJob{JobName: "job-1", Status: models.JobStatusCompleted}}
	w := NewTranscriptionWorker(poller, &savedResults{}, nil, stt.DefaultPollOptions())

	err := w.ProcessTask(context.Background(), pollTask(t, queue.TranscriptionPollPayload{JobName: "job-1", MaxWaitMs: 1500, IntervalMs: 250}))
	if err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}
	if poller.opts.MaxWait != 1500*time.Millisecond || poller.opts.Interval != 250*time.Millisecond {
		t.Fatalf("poll opts = %+v", poller.opts)
	}
}

func TestProcessTaskRetriesOnTimeout(t *testing.T) {
	poller := &stubPoller{job: &models.TranscriptionJob{JobName: "job-1", Status: models.JobStatusTimeout}}
	results := &savedResults{}

	err := NewTranscriptionWorker(poller, results, nil, stt.DefaultPollOptions()).
		ProcessTask(context.Background(), pollTask(t, queue.TranscriptionPollPayload{JobName: "job-1"}))
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("error = %v, want retryable error", err)
	}
	if len(results.jobs) != 0 {
		t.Fatal("timeout must not be stored")
	}
}

func TestProcessTaskPropagatesQueryError(t *testing.T) {
	poller := &stubPoller{err: models.StepError(models.KindTransport, stt.StepQuery, models.ErrQuery, "HTTP 502", nil)}

	err := NewTranscriptionWorker(poller, &savedResults{}, nil, stt.DefaultPollOptions()).
		ProcessTask(context.Background(), pollTask(t, queue.TranscriptionPollPayload{JobName: "job-1"}))
	if !errors.Is(err, models.ErrQuery) {
		t.Fatalf("error = %v, want ErrQuery", err)
	}
}

func TestProcessTaskSkipsRetryOnBadPayload(t *testing.T) {
	w := NewTranscriptionWorker(&stubPoller{}, &savedResults{}, nil, stt.DefaultPollOptions())

	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeTranscriptionPoll, []byte("{not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("error = %v, want SkipRetry", err)
	}

	err = w.ProcessTask(context.Background(), pollTask(t, queue.TranscriptionPollPayload{}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("error = %v, want SkipRetry", err)
	}
}

type recordingNotifier struct {
	payloads []queue.TranscriptionNotifyPayload
}

func (r *recordingNotifier) EnqueueTranscriptionNotify(ctx context.Context, p queue.TranscriptionNotifyPayload) error {
	r.payloads = append(r.payloads, p)
	return nil
}

func TestProcessTaskEnqueuesCallback(t *testing.T) {
	poller := &stubPoller{job: &models.TranscriptionJob{JobName: "job-1", Status: models.JobStatusFailed, Reason: "bad audio"}}
	notifier := &recordingNotifier{}
	w := NewTranscriptionWorker(poller, &savedResults{}, notifier, stt.DefaultPollOptions())

	err := w.ProcessTask(context.Background(), pollTask(t, queue.TranscriptionPollPayload{JobName: "job-1", CallbackURL: "https://hooks.example.com/t"}))
	if err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}
	if len(notifier.payloads) != 1 || notifier.payloads[0].Job.Reason != "bad audio" {
		t.Fatalf("notifications = %+v", notifier.payloads)
	}
}
