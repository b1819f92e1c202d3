package pipeline

import (
	"errors"
	"fmt"

	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// StatusMessage renders a job state for display.
func StatusMessage(job *models.TranscriptionJob) string {
	switch job.Status {
	case models.JobStatusCompleted:
		if job.Transcript == "" {
			return "Transcription completed with no speech detected."
		}
		return "Transcription completed."
	case models.JobStatusFailed:
		if job.Reason != "" {
			return fmt.Sprintf("Transcription failed: %s", job.Reason)
		}
		return "Transcription failed."
	case models.JobStatusNotFound:
		return fmt.Sprintf("Transcription job %s was not found.", job.JobName)
	case models.JobStatusTimeout:
		return fmt.Sprintf("Transcription is still running. Check again later with job %s.", job.JobName)
	default:
		return "Transcription is in progress."
	}
}

// ErrorMessage renders a pipeline failure for display. Transport failures
// include the raw response body.
func ErrorMessage(err error) string {
	var pErr *models.PipelineError
	if !errors.As(err, &pErr) {
		return fmt.Sprintf("Unexpected error: %v", err)
	}

	switch pErr.Kind {
	case models.KindPrecondition:
		return pErr.Message
	case models.KindTransport:
		if pErr.StatusCode != 0 {
			return fmt.Sprintf("The %s step failed with HTTP %d: %s", pErr.Step, pErr.StatusCode, pErr.Body)
		}
		return fmt.Sprintf("The %s step could not reach the service: %s", pErr.Step, pErr.Message)
	case models.KindProtocol:
		return fmt.Sprintf("The service returned an unexpected response during %s.", pErr.Step)
	default:
		return pErr.Error()
	}
}
