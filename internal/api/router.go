package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/speechbridge/internal/api/handlers"
	"github.com/nikhilbhutani/speechbridge/internal/api/middleware"
	"github.com/nikhilbhutani/speechbridge/internal/auth"
	"github.com/nikhilbhutani/speechbridge/internal/config"
	"github.com/nikhilbhutani/speechbridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/speechbridge/internal/pipeline"
)

// Services are the components behind the HTTP surface. Results, Queue and
// History are optional.
type Services struct {
	Transcriber  handlers.Transcriber
	Synthesizer  handlers.SpeechSynthesizer
	Results      handlers.ResultCache
	Queue        handlers.PollEnqueuer
	History      handlers.HistoryLister
	Capabilities pipeline.Capabilities
	Checks       map[string]handlers.Pinger
}

type Router struct {
	mux *chi.Mux
	cfg *config.Config
	svc Services
	jwt *auth.JWTMiddleware
}

func NewRouter(cfg *config.Config, svc Services) *Router {
	rt := &Router{
		mux: chi.NewRouter(),
		cfg: cfg,
		svc: svc,
	}
	if cfg.Auth.JWTSecret != "" {
		rt.jwt = auth.NewJWTMiddleware(cfg.Auth.JWTSecret)
	}
	return rt
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSAllowedOrigins))

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.svc.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	transcriptionH := handlers.NewTranscriptionHandler(
		rt.svc.Transcriber,
		rt.svc.Results,
		rt.svc.Queue,
		rt.svc.History,
		stt.PollOptionsFrom(rt.cfg.Poll),
	)
	synthesisH := handlers.NewSynthesisHandler(rt.svc.Synthesizer)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if rt.jwt != nil {
			r.Use(rt.jwt.Authenticate)
		}

		r.Get("/capabilities", handlers.Capabilities(rt.svc.Capabilities))
		r.Get("/voices", synthesisH.Voices)

		r.Route("/transcriptions", func(r chi.Router) {
			r.With(middleware.RateLimit(rt.cfg.Server.RateLimitPerMinute)).Post("/", transcriptionH.Create)
			r.Get("/", transcriptionH.List)
			r.Get("/{jobName}", transcriptionH.Get)
		})

		r.With(middleware.RateLimit(rt.cfg.Server.RateLimitPerMinute)).Post("/synthesis", synthesisH.Synthesize)
	})

	return r
}
