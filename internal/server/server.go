// Package server exposes the ingestion pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/interfaces"
)

// Server wraps the HTTP server and the pipeline service.
type Server struct {
	portfolio interfaces.PortfolioService
	config    *common.Config
	server    *http.Server
	logger    *common.Logger
}

// NewServer creates the HTTP REST API server.
func NewServer(portfolio interfaces.PortfolioService, config *common.Config, logger *common.Logger) *Server {
	s := &Server{
		portfolio: portfolio,
		config:    config,
		logger:    logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, logger)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/portfolio/parse", s.handlePortfolioParse)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
