// Package server exposes the question-answering pipeline over HTTP. The API
// is deliberately small: ask a question, check a statement, read the schema
// snapshot, and the two health probes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/askdb/askdb/internal/pipeline"
	"github.com/askdb/askdb/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimit       int // requests per minute per IP; 0 disables
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		RateLimit:       60,
	}
}

// Pinger reports whether the backing database is reachable. The readiness
// probe uses it; the liveness probe does not touch the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the top-level HTTP server. It owns the Chi router and delegates
// all question and statement handling to the pipeline.
type Server struct {
	cfg        Config
	router     chi.Router
	pipeline   *pipeline.Pipeline
	pinger     Pinger
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired. Call
// ListenAndServe to start accepting connections.
func New(cfg Config, pl *pipeline.Pipeline, pinger Pinger, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pl,
		pinger:   pinger,
		logger:   logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(s.cfg.RateLimit))
		}
		r.Post("/ask", s.handleAsk)
		r.Post("/check", s.handleCheck)
		r.Get("/schema", s.handleSchema)
	})

	s.router = r
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received, then drains in-flight requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
