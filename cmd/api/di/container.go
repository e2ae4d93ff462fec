package di

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"http-user-service/cmd/api/infrastructure"
	"http-user-service/internal/adapter/cache"
	"http-user-service/internal/adapter/db/postgres"
	ginhandler "http-user-service/internal/adapter/gin/handler"
	"http-user-service/internal/adapter/gin/middleware"
	"http-user-service/internal/adapter/repository/cached"
	"http-user-service/internal/audit"
	"http-user-service/internal/config"
	"http-user-service/internal/usecase/auth"
	"http-user-service/internal/usecase/user"
	"http-user-service/pkg/eventbus"
	redisclient "http-user-service/pkg/redis"
	"http-user-service/pkg/token"
	"http-user-service/pkg/validate"
	"http-user-service/pkg/workerpool"
)

// Container holds all application dependencies. It owns their
// lifecycles: NewContainer builds and starts, Close stops and releases
// in reverse dependency order.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client    // nil when Redis is disabled
	MemoryCache *cache.MemoryUserCache // nil when Redis is enabled

	Bus      *eventbus.Bus[audit.Entry]
	Pool     *workerpool.Pool
	Recorder *audit.Recorder

	Tokens *token.Service // nil when auth is disabled
	UserUC *user.Usecase

	RateLimiter  *middleware.RateLimiter
	UserHandler  *ginhandler.UserHandler
	AuthHandler  *ginhandler.AuthHandler
	AdminHandler *ginhandler.AdminHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize database
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize the cache layer: Redis when enabled, in-memory
	// otherwise. Both sit behind the same decorator.
	cacheTTL := time.Duration(cfg.Redis.CacheTTLSec) * time.Second
	var (
		rdb       *redisclient.Client
		memCache  *cache.MemoryUserCache
		userCache cache.UserCache
	)
	if cfg.Redis.Enabled {
		rdb, err = infrastructure.NewRedisClient(cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		userCache = cache.NewRedisUserCache(rdb.Client, cacheTTL, l)
	} else {
		memCache = cache.NewMemoryUserCache(cacheTTL, l)
		userCache = memCache
		l.Info("redis disabled, using in-memory user cache")
	}

	// Initialize repository and use case
	dbRepo := postgres.NewUserRepoPG(db, l)
	repo := cached.NewCachedUserRepository(dbRepo, userCache, l)
	userUC := user.New(repo, l)

	// Audit trail: handlers publish to the bus, the recorder consumes
	// entries onto the worker pool. With audit disabled the bus simply
	// has no subscribers and publishes become no-ops.
	bus := eventbus.New[audit.Entry](cfg.Audit.BusBuffer)
	pool := workerpool.New(cfg.Audit.Workers, cfg.Audit.QueueSize, l)
	recorder := audit.NewRecorder(bus, pool, l)
	if cfg.Audit.Enabled {
		pool.Start(context.Background())
		recorder.Start()
	}

	// Token issuing and verification, only wired when auth is on. The
	// router leaves the auth routes unmounted otherwise.
	var (
		tokens *token.Service
		authUC auth.Usecase
	)
	if cfg.Auth.Enabled {
		tokens, err = token.NewService(token.Config{
			Secret:    cfg.Auth.TokenSecret,
			Issuer:    cfg.Logger.ServiceName,
			TTLMinute: cfg.Auth.TokenTTLMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token service: %w", err)
		}
		authUC = auth.New(cfg.Auth.APIKeyHash, tokens, l)
	}

	// Rate limiter degrades to a passthrough without a Redis client
	var limiterRedis *goredis.Client
	if rdb != nil {
		limiterRedis = rdb.Client
	}
	rateLimiter := middleware.NewRateLimiter(limiterRedis, cfg.RateLimit, l)

	// HTTP handlers
	v := validate.New()
	userHandler := ginhandler.NewUserHandler(userUC, v, bus, l)
	var authHandler *ginhandler.AuthHandler
	if cfg.Auth.Enabled {
		authHandler = ginhandler.NewAuthHandler(authUC, v, bus, l)
	}
	adminHandler := ginhandler.NewAdminHandler(recorder, l)

	return &Container{
		Config:       cfg,
		Logger:       l,
		DB:           db,
		RedisClient:  rdb,
		MemoryCache:  memCache,
		Bus:          bus,
		Pool:         pool,
		Recorder:     recorder,
		Tokens:       tokens,
		UserUC:       userUC,
		RateLimiter:  rateLimiter,
		UserHandler:  userHandler,
		AuthHandler:  authHandler,
		AdminHandler: adminHandler,
	}, nil
}

// Close releases all resources held by the container. The audit chain
// drains first so entries published by in-flight requests are recorded
// before the stores go away.
func (c *Container) Close() error {
	var errs []error

	if c.Recorder != nil {
		c.Recorder.Stop()
	}
	if c.Pool != nil {
		c.Pool.Stop()
	}
	if c.Bus != nil {
		c.Bus.Close()
	}

	if c.MemoryCache != nil {
		c.MemoryCache.Close()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
