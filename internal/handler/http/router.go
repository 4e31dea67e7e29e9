package http

import (
	"net/http"
	"time"

	"shorturl/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig controls the optional parts of the router
type RouterConfig struct {
	RequestTimeout time.Duration
	EnableMetrics  bool
}

// NewRouter mounts the handler's routes behind the middleware stack
//
// Execution order (outside-in):
// Recovery -> RequestID -> Logging -> Metrics -> Timeout -> route
func NewRouter(h *Handler, log *logger.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(log),
		RequestIDMiddleware,
		LoggingMiddleware(log),
		MetricsMiddleware,
		TimeoutMiddleware(cfg.RequestTimeout),
	)

	r.Get("/health/live", h.HealthCheck)
	r.Get("/health/ready", h.ReadyCheck)
	if cfg.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Post("/", h.CreateURL)
	r.Get("/{id}", h.RedirectURL)

	return r
}
