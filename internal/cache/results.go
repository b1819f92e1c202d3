package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/models"
)

const (
	resultKeyPrefix  = "transcription:result:"
	pendingKeyPrefix = "transcription:pending:"
)

type store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// JobResults keeps the final state of transcription jobs so a re-check by
// job name does not hit the backend again. Only terminal states are stored.
type JobResults struct {
	store store
	ttl   time.Duration
}

func NewJobResults(s store, ttl time.Duration) *JobResults {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobResults{store: s, ttl: ttl}
}

// Lookup returns the cached job, or (nil, nil) when nothing is stored.
func (r *JobResults) Lookup(ctx context.Context, jobName string) (*models.TranscriptionJob, error) {
	var job models.TranscriptionJob
	err := r.store.Get(ctx, resultKeyPrefix+jobName, &job)
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Save stores job if its status is terminal and clears the pending marker.
// TIMEOUT is client-side only and is not cached, so a later re-check still
// reaches the backend.
func (r *JobResults) Save(ctx context.Context, job *models.TranscriptionJob) error {
	if !job.Status.BackendTerminal() {
		return nil
	}
	if err := r.store.Set(ctx, resultKeyPrefix+job.JobName, job, r.ttl); err != nil {
		return fmt.Errorf("save result %s: %w", job.JobName, err)
	}
	return r.store.Delete(ctx, pendingKeyPrefix+job.JobName)
}

// MarkPending records that a background poll was scheduled for jobName. It
// reports false when one is already pending.
func (r *JobResults) MarkPending(ctx context.Context, jobName string) (bool, error) {
	ok, err := r.store.SetNX(ctx, pendingKeyPrefix+jobName, time.Now().UTC(), r.ttl)
	if err != nil {
		return false, fmt.Errorf("mark pending %s: %w", jobName, err)
	}
	return ok, nil
}
