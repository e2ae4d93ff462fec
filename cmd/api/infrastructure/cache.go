package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"http-user-service/internal/config"
	redisclient "http-user-service/pkg/redis"
)

// NewRedisClient connects to Redis. Callers are expected to check
// cfg.Redis.Enabled first; a service running without Redis uses the
// in-memory cache instead.
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	redisConfig := redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}

	rdb, err := redisclient.NewClient(redisConfig, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
