package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/dittotape/internal/logger"
)

// Server serves the planning API.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - POST /api/v1/rao: Recall order of a batch
//
// The server supports graceful shutdown.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new API HTTP server in a stopped state. Defaults are
// applied so a server built directly in tests works.
func NewServer(config APIConfig, deps Dependencies) *Server {
	config.applyDefaults()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      NewRouter(deps, config.RequestTimeout),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}
}

// Start serves until ctx is cancelled or the server fails. Cancellation
// triggers a graceful shutdown and Start returns nil.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("API server failed: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.Port())
		logger.Debug("API endpoints available",
			"health", fmt.Sprintf("http://localhost:%d/health", s.Port()),
			"rao", fmt.Sprintf("http://localhost:%d/api/v1/rao", s.Port()),
		)

		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// The cancelled ctx would abort the shutdown immediately.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.Err(err))
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
