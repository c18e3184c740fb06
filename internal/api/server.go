// Package api provides the HTTP server for Mentor.
// It exposes the progress engine and the study library as a JSON API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/app/library"
	"github.com/mentor-ia/mentor/internal/app/progress"
	"github.com/mentor-ia/mentor/internal/domain"
	"github.com/mentor-ia/mentor/internal/health"
	"github.com/mentor-ia/mentor/internal/infra/metrics"
)

// Shared validator instance.
var validate = validator.New()

// Server is the Mentor HTTP API server.
type Server struct {
	progress       *progress.Service
	library        *library.Library
	health         *health.Checker
	log            *zap.Logger
	corsOrigins    []string
	now            func() time.Time
	metricsEnabled bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCORSOrigins restricts Access-Control-Allow-Origin. Empty or "*" allows all.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithHealth reports checker results on /health.
func WithHealth(c *health.Checker) Option {
	return func(s *Server) { s.health = c }
}

// WithClock overrides the clock used to default streak dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new API server.
func NewServer(p *progress.Service, lib *library.Library, opts ...Option) *Server {
	s := &Server{
		progress: p,
		library:  lib,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)

	r.Route("/api/progress", func(r chi.Router) {
		r.Get("/profile", s.handleProfile)
		r.Post("/actions", s.handleRecordAction)
		r.Post("/streak", s.handleUpdateStreak)
		r.Get("/badges", s.handleBadges)
		r.Get("/badges/{id}", s.handleBadge)
		r.Get("/personality", s.handlePersonality)
		r.Delete("/", s.handleReset)
	})

	r.Route("/api/library", func(r chi.Router) {
		r.Get("/history", s.handleHistory)
		r.Post("/history", s.handleSaveExplanation)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/favorites", s.handleFavorites)
		r.Post("/favorites", s.handleAddFavorite)
		r.Delete("/favorites/{id}", s.handleRemoveFavorite)
		r.Get("/stats", s.handleStats)
		r.Get("/quota", s.handleQuota)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth reports the latest checker results. Without a checker the
// server only reports that it is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response tagged with the request id.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("error_id", id), zap.String("path", r.URL.Path), zap.String("error", msg))
	}
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    http.StatusText(status),
			"id":      id,
		},
	})
}

// writeDomainError maps sentinel errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case progress.IsRejected(err), errors.Is(err, domain.ErrEmptyTopic):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBadgeNotFound), errors.Is(err, domain.ErrFavoriteNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDailyLimitReached):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	s.writeError(w, r, status, err.Error())
}

// decode reads a JSON body into v and validates its struct tags.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin(r.Header.Get("Origin")))
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	if len(s.corsOrigins) == 0 {
		return "*"
	}
	for _, o := range s.corsOrigins {
		if o == "*" {
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return "null"
}

// instrument records request latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPLatency.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
		)
	})
}
