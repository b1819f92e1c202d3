package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/speechbridge/internal/cache"
	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/database"
	"github.com/nikhilbhutani/speechbridge/internal/history"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/speechbridge/internal/pipeline"
	"github.com/nikhilbhutani/speechbridge/internal/queue"
	"github.com/nikhilbhutani/speechbridge/internal/queue/workers"
	"github.com/nikhilbhutani/speechbridge/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, results will not be recorded", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
	}

	rdb := cache.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	results := cache.NewJobResults(cache.NewCache(rdb), cfg.Redis.ResultTTL)

	transcriber, _ := pipeline.Build(cfg, pipeline.WithRecorder(history.New(db)))

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	transcriptionWorker := workers.NewTranscriptionWorker(transcriber, results, queueClient, stt.PollOptionsFrom(cfg.Poll))
	notifyWorker := workers.NewNotifyWorker(webhook.NewDispatcher(cfg.Webhook.SigningSecret))

	registry.RegisterFunc(queue.TypeTranscriptionPoll, transcriptionWorker.ProcessTask)
	registry.RegisterFunc(queue.TypeTranscriptionNotify, notifyWorker.ProcessTask)

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
