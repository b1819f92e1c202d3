package stt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/backend"
	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/models"
)

const (
	DefaultMaxWait  = 120 * time.Second
	DefaultInterval = 2 * time.Second
)

// PollOptions bound a poll loop. TolerateQueryErrors keeps polling through
// failed status queries until the deadline instead of returning the error.
type PollOptions struct {
	MaxWait             time.Duration
	Interval            time.Duration
	TolerateQueryErrors bool
}

func DefaultPollOptions() PollOptions {
	return PollOptions{MaxWait: DefaultMaxWait, Interval: DefaultInterval}
}

// PollOptionsFrom builds options from configuration, applying defaults.
func PollOptionsFrom(cfg config.PollConfig) PollOptions {
	opts := PollOptions{
		MaxWait:             cfg.MaxWait,
		Interval:            cfg.Interval,
		TolerateQueryErrors: cfg.TolerateQueryErrors,
	}
	return opts.withDefaults()
}

func (o PollOptions) withDefaults() PollOptions {
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Poller observes a job until the backend reports a terminal state or the
// client-side deadline passes. The backend job is never cancelled.
type Poller struct {
	api  StatusQuerier
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

func NewPoller(api StatusQuerier) *Poller {
	return &Poller{
		api:  api,
		now:  time.Now,
		wait: sleepContext,
	}
}

// Check issues a single status query.
func (p *Poller) Check(ctx context.Context, jobName string) (*models.TranscriptionJob, error) {
	res, err := p.api.TranscriptionResult(ctx, jobName)
	if err != nil {
		return nil, backend.StepFailure(StepQuery, models.ErrQuery, err)
	}
	return p.toJob(jobName, res), nil
}

// Poll queries the job every opts.Interval. COMPLETED, FAILED and NOT_FOUND
// return at once; any other status keeps polling until more than opts.MaxWait
// has elapsed, which yields a TIMEOUT job.
func (p *Poller) Poll(ctx context.Context, handle models.JobHandle, opts PollOptions) (*models.TranscriptionJob, error) {
	opts = opts.withDefaults()
	start := p.now()
	queries := 0

	for {
		job, err := p.Check(ctx, handle.JobName)
		queries++
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("poll %s: %w", handle.JobName, ctx.Err())
			}
			if !opts.TolerateQueryErrors {
				return nil, err
			}
			slog.Warn("status query failed, continuing to poll",
				"job_name", handle.JobName,
				"attempt", queries,
				"error", err,
			)
		} else if job.Status.BackendTerminal() {
			job.Queries = queries
			return job, nil
		}

		if p.now().Sub(start) > opts.MaxWait {
			slog.Info("poll deadline exceeded", "job_name", handle.JobName, "queries", queries)
			return &models.TranscriptionJob{
				JobName:   handle.JobName,
				Status:    models.JobStatusTimeout,
				Queries:   queries,
				CheckedAt: p.now().UTC(),
			}, nil
		}

		if err := p.wait(ctx, opts.Interval); err != nil {
			return nil, fmt.Errorf("poll %s: %w", handle.JobName, err)
		}
	}
}

func (p *Poller) toJob(jobName string, res *backend.TranscribeResult) *models.TranscriptionJob {
	status := models.JobStatus(res.Status)
	if !status.BackendTerminal() {
		status = models.JobStatusRunning
	}
	return &models.TranscriptionJob{
		JobName:    jobName,
		Status:     status,
		Transcript: res.Transcript,
		Reason:     res.Reason,
		CheckedAt:  p.now().UTC(),
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
