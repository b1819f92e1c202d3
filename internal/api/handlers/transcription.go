package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/speechbridge/internal/models"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/speechbridge/internal/pipeline"
	"github.com/nikhilbhutani/speechbridge/internal/queue"
	"github.com/nikhilbhutani/speechbridge/internal/webhook"
)

const maxUploadBytes = 100 << 20

type Transcriber interface {
	Submit(ctx context.Context, payload *models.AudioPayload) (*pipeline.Submission, error)
	Transcribe(ctx context.Context, payload *models.AudioPayload, opts stt.PollOptions) (*pipeline.Outcome, error)
	Recheck(ctx context.Context, jobName string) (*models.TranscriptionJob, error)
}

type ResultCache interface {
	Lookup(ctx context.Context, jobName string) (*models.TranscriptionJob, error)
	Save(ctx context.Context, job *models.TranscriptionJob) error
	MarkPending(ctx context.Context, jobName string) (bool, error)
}

type PollEnqueuer interface {
	EnqueueTranscriptionPoll(ctx context.Context, payload queue.TranscriptionPollPayload) error
}

type HistoryLister interface {
	List(ctx context.Context, limit int) ([]models.Submission, error)
}

type TranscriptionHandler struct {
	transcriber Transcriber
	results     ResultCache
	queue       PollEnqueuer
	history     HistoryLister
	pollOpts    stt.PollOptions
}

// NewTranscriptionHandler wires the transcription endpoints. results, queue
// and history may be nil.
func NewTranscriptionHandler(t Transcriber, results ResultCache, q PollEnqueuer, history HistoryLister, pollOpts stt.PollOptions) *TranscriptionHandler {
	return &TranscriptionHandler{
		transcriber: t,
		results:     results,
		queue:       q,
		history:     history,
		pollOpts:    pollOpts,
	}
}

type jobResponse struct {
	Job     *models.TranscriptionJob `json:"job"`
	Message string                   `json:"message"`
	Cached  bool                     `json:"cached,omitempty"`
}

type submittedResponse struct {
	*pipeline.Submission
	Status  models.JobStatus `json:"status"`
	Message string           `json:"message"`
}

// Create accepts a multipart upload in field "file". With mode=async it
// returns 202 once the job has started, and an optional callback_url receives
// the finished job; otherwise it waits for the job using the request context.
func (h *TranscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	payload, err := readPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := h.pollOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.FormValue("mode") == "async" {
		callbackURL := r.FormValue("callback_url")
		if callbackURL != "" {
			if err := webhook.ValidateCallbackURL(callbackURL); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		h.createAsync(w, r, payload, opts, callbackURL)
		return
	}

	out, err := h.transcriber.Transcribe(r.Context(), payload, opts)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}
	h.saveResult(r.Context(), out.Job)
	writeJSON(w, http.StatusOK, out)
}

func (h *TranscriptionHandler) createAsync(w http.ResponseWriter, r *http.Request, payload *models.AudioPayload, opts stt.PollOptions, callbackURL string) {
	sub, err := h.transcriber.Submit(r.Context(), payload)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	if h.queue != nil {
		h.schedulePoll(r.Context(), sub.Handle, opts, callbackURL)
	}

	writeJSON(w, http.StatusAccepted, submittedResponse{
		Submission: sub,
		Status:     models.JobStatusRunning,
		Message:    fmt.Sprintf("Transcription started. Check progress with job %s.", sub.Handle.JobName),
	})
}

// schedulePoll failures only lose the background poll; the job can still be
// re-checked by name.
func (h *TranscriptionHandler) schedulePoll(ctx context.Context, handle models.JobHandle, opts stt.PollOptions, callbackURL string) {
	if h.results != nil {
		fresh, err := h.results.MarkPending(ctx, handle.JobName)
		if err != nil {
			slog.Warn("failed to mark job pending", "job_name", handle.JobName, "error", err)
		} else if !fresh {
			return
		}
	}

	err := h.queue.EnqueueTranscriptionPoll(ctx, queue.TranscriptionPollPayload{
		JobName:     handle.JobName,
		ObjectKey:   handle.ObjectKey,
		MaxWaitMs:   opts.MaxWait.Milliseconds(),
		IntervalMs:  opts.Interval.Milliseconds(),
		CallbackURL: callbackURL,
	})
	if err != nil {
		slog.Error("failed to enqueue transcription poll", "job_name", handle.JobName, "error", err)
	}
}

// Get re-checks a job by name, serving finished jobs from the cache.
func (h *TranscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobName := chi.URLParam(r, "jobName")
	if jobName == "" {
		writeError(w, http.StatusBadRequest, "job name required")
		return
	}

	if h.results != nil {
		job, err := h.results.Lookup(r.Context(), jobName)
		if err != nil {
			slog.Warn("result cache lookup failed", "job_name", jobName, "error", err)
		} else if job != nil {
			writeJSON(w, http.StatusOK, jobResponse{Job: job, Message: pipeline.StatusMessage(job), Cached: true})
			return
		}
	}

	job, err := h.transcriber.Recheck(r.Context(), jobName)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}
	h.saveResult(r.Context(), job)
	writeJSON(w, http.StatusOK, jobResponse{Job: job, Message: pipeline.StatusMessage(job)})
}

func (h *TranscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"submissions": []models.Submission{}})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	subs, err := h.history.List(r.Context(), limit)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (h *TranscriptionHandler) saveResult(ctx context.Context, job *models.TranscriptionJob) {
	if h.results == nil {
		return
	}
	if err := h.results.Save(ctx, job); err != nil {
		slog.Warn("failed to cache transcription result", "job_name", job.JobName, "error", err)
	}
}

// pollOptions lets a request shorten, never extend, the configured wait. The
// server write deadline is derived from the configured value.
func (h *TranscriptionHandler) pollOptions(r *http.Request) (stt.PollOptions, error) {
	opts := h.pollOpts
	if v := r.FormValue("max_wait"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return opts, fmt.Errorf("invalid max_wait: %w", err)
		}
		opts.MaxWait = min(d, h.pollOpts.MaxWait)
	}
	if v := r.FormValue("interval"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return opts, fmt.Errorf("invalid interval: %w", err)
		}
		if d < time.Millisecond {
			return opts, errors.New("invalid interval: must be at least 1ms")
		}
		opts.Interval = d
	}
	return opts, nil
}

func parseSeconds(v string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if secs <= 0 {
		return 0, errors.New("must be positive")
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func readPayload(r *http.Request) (*models.AudioPayload, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("file field required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("uploaded file is empty")
	}

	return &models.AudioPayload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
