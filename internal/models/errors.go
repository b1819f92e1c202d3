package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures for reporting.
type ErrorKind string

const (
	KindPrecondition    ErrorKind = "precondition"
	KindTransport       ErrorKind = "transport"
	KindProtocol        ErrorKind = "protocol"
	KindTimeout         ErrorKind = "timeout"
	KindBackendTerminal ErrorKind = "backend_terminal"
)

var (
	ErrToolUnavailable   = errors.New("transcoder unavailable")
	ErrConversionFailed  = errors.New("audio conversion failed")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyInput        = errors.New("empty input")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrPresign           = errors.New("create upload url failed")
	ErrUpload            = errors.New("upload failed")
	ErrStart             = errors.New("transcription start failed")
	ErrQuery             = errors.New("transcription status query failed")
	ErrSynthesize        = errors.New("synthesis request failed")
	ErrNoAudioURL        = errors.New("no audio url in synthesis response")
	ErrFetch             = errors.New("audio fetch failed")
)

// PipelineError is a step-aware failure carrying its taxonomy kind and, for
// transport failures, the HTTP status and response body.
type PipelineError struct {
	Kind       ErrorKind `json:"kind"`
	Step       string    `json:"step"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
	Body       string    `json:"body,omitempty"`
	Err        error     `json:"-"`
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status=%d)", e.Step, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

// Unwrap exposes the step sentinel and cause for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the kind of the first PipelineError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Kind, true
	}
	return "", false
}

// StepError builds a PipelineError whose chain contains both sentinel and cause.
func StepError(kind ErrorKind, step string, sentinel error, message string, cause error) *PipelineError {
	err := sentinel
	if cause != nil {
		err = fmt.Errorf("%w: %w", sentinel, cause)
	}
	return &PipelineError{
		Kind:    kind,
		Step:    step,
		Message: message,
		Err:     err,
	}
}

// HTTPError is a non-2xx response from the backend or object storage.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
