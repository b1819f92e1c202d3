package backend

import (
	"errors"
	"fmt"

	"github.com/nikhilbhutani/speechbridge/internal/models"
)

// StepFailure classifies a failed backend or storage call. HTTP status
// failures and network errors are transport failures, undecodable bodies are
// protocol failures.
func StepFailure(step string, sentinel error, err error) *models.PipelineError {
	var httpErr *models.HTTPError
	if errors.As(err, &httpErr) {
		pErr := models.StepError(models.KindTransport, step, sentinel,
			fmt.Sprintf("%s returned HTTP %d", step, httpErr.StatusCode), err)
		pErr.StatusCode = httpErr.StatusCode
		pErr.Body = httpErr.Body
		return pErr
	}
	if errors.Is(err, ErrMalformedResponse) {
		return models.StepError(models.KindProtocol, step, sentinel, "unexpected response from backend", err)
	}
	return models.StepError(models.KindTransport, step, sentinel, err.Error(), err)
}

// MissingField reports a 2xx response that lacks a required field.
func MissingField(step string, sentinel error, field string) *models.PipelineError {
	return models.StepError(models.KindProtocol, step, sentinel,
		fmt.Sprintf("backend response missing %s", field), nil)
}
