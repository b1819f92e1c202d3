package models

import "time"

type JobStatus string

const (
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusNotFound  JobStatus = "NOT_FOUND"
	// JobStatusTimeout is produced by the client when its wait deadline passes.
	// The backend never reports it.
	JobStatusTimeout JobStatus = "TIMEOUT"
)

// Terminal reports whether no further transition is expected for the status.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusNotFound, JobStatusTimeout:
		return true
	default:
		return false
	}
}

// BackendTerminal reports whether the backend declared the job finished.
func (s JobStatus) BackendTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusNotFound
}

type TranscriptionJob struct {
	JobName    string    `json:"job_name"`
	Status     JobStatus `json:"status"`
	Transcript string    `json:"transcript,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Queries    int       `json:"queries,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}
