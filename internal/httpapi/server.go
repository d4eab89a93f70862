package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/config"
)

// Server wraps http.Server to provide graceful startup and shutdown helpers.
type Server struct {
	server *http.Server
}

// NewServer creates a configured HTTP server instance. Event streams clear
// their own write deadline, so write_timeout only bounds plain responses.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{server: &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start runs the HTTP server in the current goroutine. It returns nil after
// a graceful Shutdown.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
