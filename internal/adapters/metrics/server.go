package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the global registry over HTTP for Prometheus to scrape
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a metrics server bound to host:port serving path
func NewServer(host string, port int, path string, logger *slog.Logger) (*Server, error) {
	if Registry == nil {
		return nil, fmt.Errorf("metrics registry not initialized")
	}
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry}))

	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(host, fmt.Sprintf("%d", port)),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

// Start serves in the background until Shutdown
func (s *Server) Start() {
	go func() {
		s.logger.Info("metrics server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
