package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	slackCtrl "github.com/secmon-lab/intake/pkg/controller/slack"
	"github.com/secmon-lab/intake/pkg/service/metrics"
	"github.com/secmon-lab/intake/pkg/usecase"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// ServerOption is a functional option for NewServer
type ServerOption func(*serverOptions)

type serverOptions struct {
	slackHandler *slackCtrl.Handler
}

// WithSlackHandler serves the Slack Events API under /hooks/slack/event
func WithSlackHandler(h *slackCtrl.Handler) ServerOption {
	return func(o *serverOptions) {
		o.slackHandler = h
	}
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, uc usecase.IntakeUseCase, opts ...ServerOption) *Server {
	var options serverOptions
	for _, opt := range opts {
		opt(&options)
	}

	router := chi.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(MetricsMiddleware)
	router.Use(middleware.Recoverer)

	incidents := NewIncidentHandler(uc)

	router.Get("/health", handleHealth)
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Post("/parse", incidents.HandleParse)
		r.Post("/rows", incidents.HandleRow)
		r.Post("/incidents", incidents.HandleSubmit)
		r.Get("/incidents/{id}", incidents.HandleGet)
	})

	if options.slackHandler != nil {
		router.Route("/hooks/slack", func(r chi.Router) {
			r.Post("/event", options.slackHandler.HandleEvent)
		})
	}

	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}
}

// Router returns the routing handler without the listener
func (s *Server) Router() http.Handler {
	return s.router
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "intake",
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}
