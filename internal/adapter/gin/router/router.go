package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"http-user-service/internal/adapter/gin/handler"
	"http-user-service/internal/adapter/gin/middleware"
	"http-user-service/internal/config"
	"http-user-service/pkg/token"
)

// SetupRouter configures and returns a gin engine with all routes and
// middleware. Middleware order matters: the request ID must exist
// before the logger reads it, and the recovery handler sits inside the
// logger so panicking requests still produce an access log line.
func SetupRouter(
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
	adminHandler *handler.AdminHandler,
	rateLimiter *middleware.RateLimiter,
	tokens *token.Service,
	cfg *config.Config,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.App.CORSOrigins))
	router.Use(rateLimiter.Middleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": cfg.Logger.ServiceName,
		})
	})

	// API v1 routes. Reads stay public; mutations and the admin surface
	// require a bearer token when auth is configured, and are open for
	// local development when it is not.
	v1 := router.Group("/v1")
	{
		if cfg.Auth.Enabled {
			v1.POST("/auth/token", authHandler.IssueToken())
		}

		users := v1.Group("/users")
		{
			users.GET("", userHandler.ListUsers())
			users.GET("/:id", userHandler.GetUser())

			mutate := users.Group("")
			if cfg.Auth.Enabled {
				mutate.Use(middleware.BearerAuth(tokens, log))
			}
			mutate.POST("", userHandler.CreateUser())
			mutate.PUT("/:id", userHandler.UpdateUser())
			mutate.DELETE("/:id", userHandler.DeleteUser())
		}

		admin := v1.Group("/admin")
		if cfg.Auth.Enabled {
			admin.Use(middleware.BearerAuth(tokens, log))
		}
		{
			admin.GET("/audit/stats", adminHandler.AuditStats())
		}
	}

	return router
}
