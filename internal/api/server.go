package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/conviction-radar/pkg/config"
	"github.com/wonny/conviction-radar/pkg/logger"
)

// DefaultDrainTimeout bounds graceful shutdown
const DefaultDrainTimeout = 30 * time.Second

// Server represents the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	drain      time.Duration

	// 요청 컨텍스트의 부모; REST 요청이 drain된 뒤 취소 → 남은 websocket 배치 중단
	base       context.Context
	cancelBase context.CancelFunc
}

// New creates a new API server listening on cfg.Port
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	base, cancel := context.WithCancel(context.Background())

	s := &Server{
		logger:     log.WithField("component", "api"),
		drain:      DefaultDrainTimeout,
		base:       base,
		cancelBase: cancel,
	}
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute, // batch 스캔은 수십 초 이상 걸림
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.base },
	}
	return s
}

// WithDrainTimeout overrides how long Run waits for in-flight requests
func (s *Server) WithDrainTimeout(d time.Duration) *Server {
	if d > 0 {
		s.drain = d
	}
	return s
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
// Websocket sessions are hijacked and not tracked by http.Server, so they
// are cancelled through the base context once REST requests have drained.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.WithField("addr", ln.Addr().String()).Info("Starting API server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.cancelBase()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	s.logger.WithField("drain", s.drain).Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.drain)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.cancelBase()
	<-errCh

	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info("API server stopped")
	return nil
}
