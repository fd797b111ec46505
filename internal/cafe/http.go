// Package cafe exposes the café inventory and sales tables over HTTP. Every
// table gets the same five endpoints from Resource; handlers run one
// statement on the connection leased for the request.
package cafe

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cafeteria-service/internal/pool"
)

const serviceName = "cafeteria-service"

type Server struct {
	pool     *pool.Pool
	logger   *slog.Logger
	validate *validator.Validate
}

// NewRouter wires the health and metrics endpoints and mounts every resource
// behind the pool's request-scoped lease middleware. A connection is leased
// only once a handler has validated its input. gatherer may be nil to
// leave /metrics unmounted.
func NewRouter(p *pool.Pool, logger *slog.Logger, gatherer prometheus.Gatherer, opts ...RouterOption) http.Handler {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		pool:     p,
		logger:   logger,
		validate: newValidator(),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(requestLogMiddleware(logger))
	r.Use(middleware.Recoverer)
	if o.corsOrigin != "" {
		r.Use(corsMiddleware(o.corsOrigin))
	}

	r.Get("/health", s.handleHealth)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if o.rateLimit > 0 {
			r.Use(newRateLimiter(o.rateLimit).middleware)
		}
		if o.maxBodyBytes > 0 {
			r.Use(bodyLimitMiddleware(o.maxBodyBytes))
		}
		r.Use(p.Middleware)
		for _, res := range resources {
			res.Mount(s, r)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.pool.Stats()
	status, code := "ok", http.StatusOK
	if !stats.Open {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"service": serviceName,
		"pool":    stats,
	})
}
