package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/pipeline"
)

type errorResponse struct {
	Error      string           `json:"error"`
	Kind       models.ErrorKind `json:"kind,omitempty"`
	Step       string           `json:"step,omitempty"`
	StatusCode int              `json:"upstream_status,omitempty"`
	Body       string           `json:"upstream_body,omitempty"`
}

// writePipelineError maps a pipeline failure to an HTTP response.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: pipeline.ErrorMessage(err)}
	status := http.StatusInternalServerError

	var pErr *models.PipelineError
	switch {
	case errors.As(err, &pErr):
		resp.Kind = pErr.Kind
		resp.Step = pErr.Step
		resp.StatusCode = pErr.StatusCode
		resp.Body = pErr.Body
		status = kindStatus(err, pErr.Kind)
	case errors.Is(err, context.DeadlineExceeded):
		resp.Error = "request timed out"
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		resp.Error = "request cancelled"
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		slog.Warn("request rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, resp)
}

func kindStatus(err error, kind models.ErrorKind) int {
	switch kind {
	case models.KindPrecondition:
		if errors.Is(err, models.ErrToolUnavailable) || errors.Is(err, models.ErrConversionFailed) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case models.KindTransport, models.KindProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
