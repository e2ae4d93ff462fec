package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"http-user-service/internal/config"
	"http-user-service/pkg/errs"
	"http-user-service/pkg/pipeline"
)

// tokenBucketScript refills and consumes one token atomically.
// Bucket state per key: {last_refill_time, current_tokens}.
const tokenBucketScript = `
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])         -- tokens per second
	local capacity = tonumber(ARGV[2])     -- max tokens in bucket
	local now = tonumber(ARGV[3])          -- current timestamp
	local requested = tonumber(ARGV[4])    -- tokens requested (always 1)

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	if tokens >= requested then
		tokens = tokens - requested
		redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
		redis.call('EXPIRE', key, 60)
		return 1
	end

	redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, 60)
	return 0
`

// RateLimiter applies a per-client token bucket backed by Redis, so
// the limit holds across service instances. Redis being down must not
// take the API down with it: limiter errors fail open.
type RateLimiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	log    *zap.Logger
	mapErr pipeline.ErrorMapper
}

// NewRateLimiter creates a rate limiter middleware. A nil client or a
// disabled config yields a pass-through middleware.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		cfg:    cfg,
		log:    log,
		mapErr: pipeline.NewErrorMapper(log),
	}
}

// Middleware returns the gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	if !rl.cfg.Enabled || rl.client == nil {
		return func(c *gin.Context) { c.Next() }
	}

	rate := float64(rl.cfg.RequestsPerMinute) / 60.0
	capacity := rl.cfg.Burst
	if capacity < 1 {
		capacity = 1
	}

	return func(c *gin.Context) {
		// Key on the route pattern, not the raw path, so /users/1 and
		// /users/2 share a bucket per client.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, c.ClientIP())

		allowed, err := rl.client.Eval(c.Request.Context(), tokenBucketScript,
			[]string{key},
			rate,
			capacity,
			time.Now().Unix(),
			1,
		).Int64()
		if err != nil {
			rl.log.Warn("rate limiter unavailable, allowing request",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		if allowed == 0 {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("route", route))
			rl.mapErr(c, errs.NewRateLimitedError(fmt.Sprintf(
				"rate limit exceeded: %d requests per minute (burst %d)",
				rl.cfg.RequestsPerMinute, capacity)))
			return
		}

		c.Next()
	}
}
