package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the history record of one transcription submission.
type Submission struct {
	ID          uuid.UUID `json:"id" db:"id"`
	JobName     string    `json:"job_name" db:"job_name"`
	ObjectKey   string    `json:"s3_key" db:"object_key"`
	Filename    string    `json:"filename" db:"filename"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes" db:"size_bytes"`
	Normalized  bool      `json:"normalized" db:"normalized"`
	Status      JobStatus `json:"status" db:"status"`
	Transcript  string    `json:"transcript,omitempty" db:"transcript"`
	Reason      string    `json:"reason,omitempty" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
