package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Mahi3005/data-alchemist/pkg/config"
	"github.com/Mahi3005/data-alchemist/pkg/engine"
	"github.com/Mahi3005/data-alchemist/pkg/history"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/health"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/metrics"
	"github.com/Mahi3005/data-alchemist/pkg/telemetry/tracing"
)

// janitorInterval is how often expired sessions are swept.
const janitorInterval = time.Minute

// Deps are the collaborators of a Server. Only Engine is required.
type Deps struct {
	Engine    *engine.Engine
	History   history.Storage
	Retention *history.Scheduler
	Metrics   *metrics.Collector
	Tracer    *tracing.Tracer
	Logger    *slog.Logger

	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP API over the validation engine.
type Server struct {
	config      config.ServerConfig
	metricsPath string

	engine   *engine.Engine
	sessions *SessionStore
	history  history.Storage
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	checker  *health.Checker
	logger   *slog.Logger
	deps     Deps

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, errors.New("server: engine is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:      cfg.Server,
		metricsPath: cfg.Telemetry.Metrics.Path,
		engine:      deps.Engine,
		history:     deps.History,
		metrics:     deps.Metrics,
		tracer:      deps.Tracer,
		checker:     health.New(0),
		logger:      logger.With("component", "server"),
		deps:        deps,
	}

	onChange := func(int) {}
	if s.metrics != nil {
		onChange = s.metrics.SetActiveSessions
	}
	s.sessions = NewSessionStore(deps.Engine, cfg.Server.SessionTTL, onChange)

	if s.history != nil {
		s.checker.Register("history", s.history.Ping)
	}
	if deps.Retention != nil {
		s.checker.Register("retention", deps.Retention.Check)
	}
	return s, nil
}

// Handler builds the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/validate", s.handleValidate)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/edits", s.handleEdit)
	mux.HandleFunc("POST /v1/sessions/{id}/fixes", s.handleFix)
	mux.HandleFunc("GET /v1/runs", s.handleListRuns)
	mux.HandleFunc("GET /v1/runs/{id}", s.handleGetRun)

	health.Register(mux, s.checker, s.deps.Version, s.deps.Commit, s.deps.BuildTime)
	if s.metrics != nil && s.metricsPath != "" {
		mux.Handle("GET "+s.metricsPath, s.metrics.Handler())
	}

	var handler http.Handler = mux
	if s.metrics != nil {
		handler = metricsMiddleware(s.metrics, handler)
	}
	if s.tracer != nil {
		handler = tracing.HTTPMiddleware(s.tracer, handler)
	}
	handler = loggingMiddleware(s.logger, handler)
	handler = requestIDMiddleware(handler)
	handler = recoveryMiddleware(s.logger, handler)
	return handler
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.mu.Unlock()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.RunJanitor(janitorCtx, janitorInterval)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		srv := s.httpServer
		s.mu.Unlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}
