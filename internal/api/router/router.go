package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/whatsauto-webhook/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/whatsauto-webhook/internal/http/middleware"
	"github.com/wolfman30/whatsauto-webhook/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Webhook        *handlers.WebhookHandler
	Health         *handlers.HealthHandler
	MetricsHandler http.Handler

	// Rate limiting applies to POST /webhook only; RateLimitRPS <= 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int
	// Context bounds background goroutines such as rate limiter cleanup.
	Context context.Context
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", cfg.Webhook.Index)
	r.With(httpmiddleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger)).
		Post("/webhook", cfg.Webhook.Handle)

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
