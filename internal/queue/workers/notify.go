package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speechbridge/internal/queue"
	"github.com/nikhilbhutani/speechbridge/internal/webhook"
)

type deliverer interface {
	Deliver(ctx context.Context, callbackURL, event string, payload []byte) error
}

// NotifyWorker posts finished jobs to their callback URL.
type NotifyWorker struct {
	dispatcher deliverer
}

func NewNotifyWorker(d deliverer) *NotifyWorker {
	return &NotifyWorker{dispatcher: d}
}

func (w *NotifyWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranscriptionNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := webhook.ValidateCallbackURL(payload.CallbackURL); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	body, err := json.Marshal(payload.Job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return w.dispatcher.Deliver(ctx, payload.CallbackURL, webhook.EventTranscriptionFinished, body)
}
