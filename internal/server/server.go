// Package server owns HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lexabot/lexa/internal/api"
	"github.com/lexabot/lexa/internal/infra/config"
	"github.com/lexabot/lexa/internal/metrics"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server, database and background consumers.
type Server struct {
	config  Config
	db      *sql.DB
	http    *http.Server
	log     *zap.Logger
	cleanup func()
}

// NewServer creates a new HTTP server wired to the full application router.
func NewServer(db *sql.DB, cfg Config, appCfg config.Config, log *zap.Logger, col *metrics.Collector) *Server {
	router, cleanup := api.NewRouter(db, appCfg, log, col)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		config:  cfg,
		db:      db,
		http:    httpServer,
		log:     log,
		cleanup: cleanup,
	}
}

// Start starts the HTTP server and blocks until an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting http server", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server: stops accepting requests, drains
// the archiver so no accepted message is lost, then closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.cleanup()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("database close error: %w", err)
	}

	s.log.Info("server shutdown complete")
	return nil
}
