package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/andymarkow/paydash/internal/server/handlers"
	"github.com/andymarkow/paydash/internal/server/router"
)

type Server struct {
	srv *http.Server
	log *slog.Logger
}

type Config struct {
	serverAddr string
	logger     *slog.Logger
}

type Option func(c *Config)

func WithServerAddr(addr string) Option {
	return func(c *Config) {
		c.serverAddr = addr
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

func NewServer(dashboard handlers.Dashboard, opts ...Option) *Server {
	cfg := &Config{
		serverAddr: "0.0.0.0:3000",
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	r := router.NewRouter(dashboard,
		router.WithLogger(cfg.logger),
	)

	srv := &http.Server{
		Addr:              cfg.serverAddr,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		srv: srv,
		log: cfg.logger.With(slog.String("module", "server")),
	}
}

// Start serves the dashboard until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info(fmt.Sprintf("Starting server on %s", s.srv.Addr))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Gracefully shutting down server...")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}
