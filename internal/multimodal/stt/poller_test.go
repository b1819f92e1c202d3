package stt

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/backend"
	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

func TestPollCompletesAfterRunning(t *testing.T) {
	const n = 3
	api := &fakeBackend{}
	for i := 0; i < n; i++ {
		api.statuses = append(api.statuses, running())
	}
	api.statuses = append(api.statuses, statusReply{result: &backend.TranscribeResult{Status: "COMPLETED", Transcript: "hola mundo"}})

	clock := newFakeClock()
	opts := PollOptions{MaxWait: 120 * time.Second, Interval: 2 * time.Second}
	job, err := newTestPoller(api, clock).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, opts)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != models.JobStatusCompleted || job.Transcript != "hola mundo" {
		t.Fatalf("job = %+v", job)
	}
	if api.queryCount() != n+1 || job.Queries != n+1 {
		t.Fatalf("queries = %d (job %d), want %d", api.queryCount(), job.Queries, n+1)
	}
	if len(clock.waits) != n {
		t.Fatalf("waits = %d, want %d", len(clock.waits), n)
	}
	for _, w := range clock.waits {
		if w != 2*time.Second {
			t.Fatalf("wait = %s, want 2s", w)
		}
	}
}

func TestPollTimesOutWhenAlwaysRunning(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{running()}}
	clock := newFakeClock()
	opts := PollOptions{MaxWait: 10 * time.Second, Interval: 2 * time.Second}

	job, err := newTestPoller(api, clock).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, opts)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != models.JobStatusTimeout {
		t.Fatalf("status = %s, want TIMEOUT", job.Status)
	}
	// queries at t=0,2,4,6,8,10,12; 12s is the first elapsed value over 10s.
	if api.queryCount() != 7 {
		t.Fatalf("queries = %d, want 7", api.queryCount())
	}
	queriesAtReturn := api.queryCount()
	if elapsed := clock.Now().Sub(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)); elapsed <= opts.MaxWait {
		t.Fatalf("returned TIMEOUT after %s, deadline %s", elapsed, opts.MaxWait)
	}
	if api.queryCount() != queriesAtReturn {
		t.Fatal("poller queried after returning")
	}
}

func TestPollNotFoundReturnsImmediately(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{{result: &backend.TranscribeResult{Status: "NOT_FOUND"}}}}
	clock := newFakeClock()

	job, err := newTestPoller(api, clock).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, DefaultPollOptions())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != models.JobStatusNotFound {
		t.Fatalf("status = %s, want NOT_FOUND", job.Status)
	}
	if api.queryCount() != 1 || len(clock.waits) != 0 {
		t.Fatalf("queries=%d waits=%d, want 1 and 0", api.queryCount(), len(clock.waits))
	}
}

func TestPollFailedCarriesReason(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{
		running(),
		{result: &backend.TranscribeResult{Status: "FAILED", Reason: "The media format is not supported"}},
	}}

	job, err := newTestPoller(api, newFakeClock()).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, DefaultPollOptions())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != models.JobStatusFailed || job.Reason != "The media format is not supported" {
		t.Fatalf("job = %+v", job)
	}
}

func TestPollUnknownStatusKeepsPolling(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{
		{result: &backend.TranscribeResult{}},
		{result: &backend.TranscribeResult{Status: "QUEUED"}},
		{result: &backend.TranscribeResult{Status: "COMPLETED", Transcript: "ok"}},
	}}

	job, err := newTestPoller(api, newFakeClock()).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, DefaultPollOptions())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != models.JobStatusCompleted || api.queryCount() != 3 {
		t.Fatalf("job = %+v queries = %d", job, api.queryCount())
	}
}

func TestPollQueryErrorPropagates(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{
		running(),
		{err: &models.HTTPError{StatusCode: http.StatusBadGateway, Body: "bad gateway"}},
		running(),
	}}

	_, err := newTestPoller(api, newFakeClock()).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, DefaultPollOptions())
	if !errors.Is(err, models.ErrQuery) {
		t.Fatalf("error = %v, want ErrQuery", err)
	}
	if kind, _ := models.KindOf(err); kind != models.KindTransport {
		t.Fatalf("kind = %s, want transport", kind)
	}
	if api.queryCount() != 2 {
		t.Fatalf("queries = %d, want 2", api.queryCount())
	}
}

func TestPollToleratesQueryErrorsWhenConfigured(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{result: &backend.TranscribeResult{Status: "COMPLETED", Transcript: "ok"}},
	}}
	opts := PollOptions{MaxWait: time.Minute, Interval: time.Second, TolerateQueryErrors: true}

	job, err := newTestPoller(api, newFakeClock()).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, opts)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != models.JobStatusCompleted || job.Queries != 3 {
		t.Fatalf("job = %+v", job)
	}
}

func TestPollToleratedErrorsStillHitDeadline(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{{err: errors.New("connection refused")}}}
	opts := PollOptions{MaxWait: 3 * time.Second, Interval: 2 * time.Second, TolerateQueryErrors: true}

	job, err := newTestPoller(api, newFakeClock()).Poll(context.Background(), models.JobHandle{JobName: "job-1"}, opts)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if job.Status != models.JobStatusTimeout {
		t.Fatalf("status = %s, want TIMEOUT", job.Status)
	}
}

func TestPollCancelledDuringWait(t *testing.T) {
	api := &fakeBackend{statuses: []statusReply{running()}}
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(api)
	p.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	_, err := p.Poll(ctx, models.JobHandle{JobName: "job-1"}, PollOptions{MaxWait: time.Hour, Interval: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if api.queryCount() != 1 {
		t.Fatalf("queries = %d, want 1", api.queryCount())
	}
}

func TestSleepContextReturnsPromptlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleepContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleepContext did not return promptly")
	}
}

func TestPollOptionsFromAppliesDefaults(t *testing.T) {
	opts := PollOptionsFrom(config.PollConfig{})
	if opts.MaxWait != DefaultMaxWait || opts.Interval != DefaultInterval {
		t.Fatalf("opts = %+v", opts)
	}
}
