package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	ginhandler "http-user-service/internal/adapter/gin/handler"
	"http-user-service/internal/adapter/gin/middleware"
	"http-user-service/internal/config"
	"http-user-service/pkg/token"
)

// Server holds the HTTP server and its dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(
	cfg *config.Config,
	l *zap.Logger,
	userHandler *ginhandler.UserHandler,
	authHandler *ginhandler.AuthHandler,
	adminHandler *ginhandler.AdminHandler,
	rateLimiter *middleware.RateLimiter,
	tokens *token.Service,
) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(userHandler, authHandler, adminHandler, rateLimiter, tokens, cfg, l),
	}
}

// Start serves HTTP until Shutdown is called or the listener fails.
// A graceful shutdown is not reported as an error.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))

	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight
// requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
