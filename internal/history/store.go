package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/speechbridge/internal/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Store is the submission history.
type Store interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	UpdateResult(ctx context.Context, job *models.TranscriptionJob) error
	List(ctx context.Context, limit int) ([]models.Submission, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps submissions in the submissions table.
type PostgresStore struct {
	db querier
}

// New returns a Postgres-backed store, or a no-op store when pool is nil.
func New(pool *pgxpool.Pool) Store {
	if pool == nil {
		return NopStore{}
	}
	return &PostgresStore{db: pool}
}

func (s *PostgresStore) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO submissions (id, job_name, object_key, filename, content_type, size_bytes, normalized, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (job_name) DO NOTHING`,
		sub.ID, sub.JobName, sub.ObjectKey, sub.Filename, sub.ContentType, sub.SizeBytes, sub.Normalized,
		sub.Status, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// UpdateResult records the latest observed state of a job. Unknown job names
// are ignored, since jobs can be re-checked without having been submitted here.
func (s *PostgresStore) UpdateResult(ctx context.Context, job *models.TranscriptionJob) error {
	_, err := s.db.Exec(ctx,
		`UPDATE submissions SET status = $2, transcript = $3, reason = $4, updated_at = $5
		 WHERE job_name = $1`,
		job.JobName, job.Status, job.Transcript, job.Reason, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update submission %s: %w", job.JobName, err)
	}
	return nil
}

// List returns the most recent submissions first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]models.Submission, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, job_name, object_key, filename, content_type, size_bytes, normalized, status, transcript, reason, created_at, updated_at
		 FROM submissions ORDER BY created_at DESC LIMIT $1`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	subs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Submission])
	if err != nil {
		return nil, fmt.Errorf("scan submissions: %w", err)
	}
	return subs, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// NopStore discards history.
type NopStore struct{}

func (NopStore) CreateSubmission(context.Context, *models.Submission) error { return nil }

func (NopStore) UpdateResult(context.Context, *models.TranscriptionJob) error { return nil }

func (NopStore) List(context.Context, int) ([]models.Submission, error) {
	return []models.Submission{}, nil
}
