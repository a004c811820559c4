// Package server owns the HTTP listener and the middleware chain around
// the route mux.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
)

// Server wraps the standard library HTTP server around the application
// mux with logging, CORS, and panic recovery.
type Server struct {
	server *http.Server
	logger arbor.ILogger
}

// New builds the server for the given mux. WriteTimeout stays unset:
// the job event stream holds its response open for the lifetime of a
// pipeline run.
func New(host string, port int, mux http.Handler, logger arbor.ILogger) *Server {
	s := &Server{logger: logger}

	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", host, port),
		Handler:     s.withMiddleware(mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start begins listening and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server shutting down")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
