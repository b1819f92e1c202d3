package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speechbridge/internal/config"
)

type Client struct {
	client *asynq.Client
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(RedisOpt(cfg)),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueTranscriptionPoll schedules a background poll. The task ID is the job
// name, so a job is polled by at most one pending task.
func (c *Client) EnqueueTranscriptionPoll(ctx context.Context, payload TranscriptionPollPayload) error {
	return c.enqueue(ctx, TypeTranscriptionPoll, payload,
		asynq.TaskID(payload.JobName),
		asynq.MaxRetry(5),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(time.Hour),
	)
}

func (c *Client) EnqueueTranscriptionNotify(ctx context.Context, payload TranscriptionNotifyPayload) error {
	return c.enqueue(ctx, TypeTranscriptionNotify, payload, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	task, err := NewTask(taskType, payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

// NewTask encodes payload as JSON into a task of the given type.
func NewTask(taskType string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(taskType, data), nil
}
