package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "http-user-service/internal/adapter/gin/handler"
	"http-user-service/internal/adapter/gin/middleware"
	ginrouter "http-user-service/internal/adapter/gin/router"
	"http-user-service/internal/config"
	"http-user-service/pkg/token"
)

// SetupGinServer builds the gin engine with all routes and wraps it in
// an http.Server with timeouts.
func SetupGinServer(
	userHandler *ginhandler.UserHandler,
	authHandler *ginhandler.AuthHandler,
	adminHandler *ginhandler.AdminHandler,
	rateLimiter *middleware.RateLimiter,
	tokens *token.Service,
	cfg *config.Config,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(userHandler, authHandler, adminHandler, rateLimiter, tokens, cfg, l)

	addr := ":" + cfg.App.HTTPPort
	l.Info("REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
