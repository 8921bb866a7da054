package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"helpdesk-hq/custodian/pkg/config"
	"helpdesk-hq/custodian/pkg/telemetry/health"
)

// Options configure the admin server. Only Config is required; handlers
// left nil are simply not mounted.
type Options struct {
	// Config supplies the listen address and shutdown timeout.
	Config *config.DaemonConfig

	// Metrics is the Prometheus scrape handler, mounted at MetricsPath.
	Metrics http.Handler

	// MetricsPath defaults to "/metrics".
	MetricsPath string

	// Health mounts liveness and readiness probes at the paths from
	// HealthConfig.
	Health *health.Checker

	// HealthConfig selects probe paths; nil uses the defaults.
	HealthConfig *config.HealthConfig

	// Version is mounted at /version.
	Version http.HandlerFunc

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server is the daemon's admin HTTP server: metrics, probes, version.
type Server struct {
	config     *config.DaemonConfig
	mux        *http.ServeMux
	logger     *slog.Logger
	httpServer *http.Server

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates an admin server and mounts the configured handlers.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("daemon config is required")
	}
	if opts.Config.ListenAddress == "" {
		return nil, fmt.Errorf("listen address is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server.admin")

	s := &Server{
		config:       opts.Config,
		mux:          http.NewServeMux(),
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}

	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle(path, opts.Metrics)
	}
	if opts.Health != nil {
		health.Register(s.mux, opts.Health, opts.HealthConfig)
	}
	if opts.Version != nil {
		s.mux.HandleFunc("/version", opts.Version)
	}

	return s, nil
}

// Start serves until the context is canceled, Stop is called, or the
// listener fails. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true

	s.httpServer = &http.Server{
		Addr:    s.config.ListenAddress,
		Handler: s.mux,

		// Scrapes and probes are small; a slow client should not be
		// able to pin a connection open.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("admin server listening", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("admin server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down admin server")
		return s.Shutdown(context.Background())
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Stop requests shutdown from another goroutine. Safe to call more than
// once and before Start.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s.logger.Info("shutting down admin server", "timeout", timeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var shutdownErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("admin server shutdown error", "error", err)
			shutdownErr = fmt.Errorf("admin server shutdown: %w", err)
		}
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("admin server stopped")
	return shutdownErr
}

// IsRunning reports whether the listener is up.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}
