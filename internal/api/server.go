package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/gpop/internal/auth"
	"github.com/mattjoyce/gpop/internal/command"
	"github.com/mattjoyce/gpop/internal/events"
	"github.com/mattjoyce/gpop/internal/journal"
	"github.com/mattjoyce/gpop/internal/session"
)

// maxBodyBytes caps dispatch request bodies.
const maxBodyBytes = 1 << 20

// Runner drains a queue once.
type Runner interface {
	Run(ctx context.Context, source string, q *command.Queue) (*session.Result, error)
}

// RunStore reads journaled runs.
type RunStore interface {
	GetRun(ctx context.Context, runID string) (*journal.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*journal.Run, error)
}

// Config holds API server configuration.
// Tokens enables bearer auth on everything but /healthz; empty leaves the
// API open.
type Config struct {
	Listen string
	Tokens []auth.TokenConfig
}

// Server is the HTTP front end of the dispatcher.
type Server struct {
	config    Config
	runner    Runner
	runs      RunStore
	events    *events.Hub
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a server. runs and hub may be nil, which disables the
// endpoints that need them.
func New(config Config, runner Runner, runs RunStore, hub *events.Hub, logger *slog.Logger) *Server {
	return &Server{
		config:    config,
		runner:    runner,
		runs:      runs,
		events:    hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // event stream is long-lived
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Unauthenticated ops endpoint.
	r.Get("/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		if len(s.config.Tokens) > 0 {
			r.Use(s.authMiddleware)
		}
		r.With(s.requireScopes(auth.ScopeDispatchRW)).Post("/dispatch", s.handleDispatch)
		r.With(s.requireScopes(auth.ScopeRunsRO)).Get("/runs", s.handleListRuns)
		r.With(s.requireScopes(auth.ScopeRunsRO)).Get("/runs/{runID}", s.handleGetRun)
		r.With(s.requireScopes(auth.ScopeEventsRO)).Get("/events", s.handleEvents)
	})

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
