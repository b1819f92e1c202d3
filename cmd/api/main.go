package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilbhutani/speechbridge/internal/api"
	"github.com/nikhilbhutani/speechbridge/internal/api/handlers"
	"github.com/nikhilbhutani/speechbridge/internal/cache"
	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/database"
	"github.com/nikhilbhutani/speechbridge/internal/history"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/audio"
	"github.com/nikhilbhutani/speechbridge/internal/pipeline"
	"github.com/nikhilbhutani/speechbridge/internal/queue"
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
	checks := map[string]handlers.Pinger{}

	// Database connection (optional)
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, running without history", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close()
		checks["database"] = db

		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Warn("migrations failed", "error", err)
		}
	}
	store := history.New(db)

	svc := api.Services{
		History:      store,
		Capabilities: pipeline.ResolveCapabilities(cfg.Features, audio.NewNormalizer(cfg.Transcode)),
		Checks:       checks,
	}
	svc.Transcriber, svc.Synthesizer = pipeline.Build(cfg, pipeline.WithRecorder(store))

	// Redis connection (optional)
	rdb := cache.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	redisCache := cache.NewCache(rdb)
	if err := redisCache.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, running without result cache or background polling", "error", err)
	} else {
		checks["redis"] = redisCache
		svc.Results = cache.NewJobResults(redisCache, cfg.Redis.ResultTTL)

		queueClient := queue.NewClient(cfg.Redis)
		defer queueClient.Close()
		svc.Queue = queueClient
	}

	slog.Info("capabilities resolved",
		"recording", svc.Capabilities.Recording,
		"transcoding", svc.Capabilities.Transcoding,
	)

	// Setup router
	router := api.NewRouter(cfg, svc)
	handler := router.Setup()

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler,
		ReadTimeout: 60 * time.Second,
		// Synchronous transcriptions hold the response open while polling.
		WriteTimeout: cfg.Poll.MaxWait + 3*time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "backend", cfg.Backend.URL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
