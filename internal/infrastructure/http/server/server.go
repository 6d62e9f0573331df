// Package server provides the HTTP server: router, middleware chain,
// route registration and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/planea/aiserver/internal/infrastructure/config"
	"github.com/planea/aiserver/internal/infrastructure/http/handlers"
	"github.com/planea/aiserver/internal/infrastructure/http/middleware"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *chi.Mux
	server   *http.Server
	handlers *handlers.Handlers
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	h *handlers.Handlers,
	metrics *middleware.Metrics,
	gatherer prometheus.Gatherer,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		handlers: h,
		metrics:  metrics,
		gatherer: gatherer,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(s.metrics.Handler)
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.MaxBody(s.config.Server.MaxBodyBytes))

	if s.config.RateLimit.Enable {
		r.Use(middleware.RateLimit(
			s.config.RateLimit.RequestsPerMin,
			s.config.RateLimit.BurstSize,
			s.logger,
		))
	}

	r.Get("/", s.handlers.Root)
	r.Get(s.config.Monitoring.HealthCheckPath, s.handlers.Health)

	if s.config.Monitoring.EnableMetrics {
		r.Handle(s.config.Monitoring.MetricsPath, promhttp.HandlerFor(
			s.gatherer,
			promhttp.HandlerOpts{},
		))
	}

	// Plan-sized operations: a full week fan-out fits in the plan timeout.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.config.Server.PlanTimeout))
		r.Post("/plan", s.handlers.Plan)
		r.Post("/regenerate-meal", s.handlers.RegenerateMeal)
		r.Post("/recipe", s.handlers.Recipe)
		r.Post("/recipe-from-title", s.handlers.RecipeFromTitle)
		r.Post("/recipe-from-image", s.handlers.RecipeFromImage)
		r.Post("/chat", s.handlers.Chat)
		r.Post("/meal-prep-concepts", s.handlers.Concepts)
	})

	// Kit building chains generation, grouping and phase synthesis, so it
	// gets its own longer budget.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.config.Server.KitTimeout))
		r.Post("/meal-prep-kit", s.handlers.Kit)
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := http2.ConfigureServer(s.server, nil); err != nil {
		s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
