package middleware

import (
	"strconv"
	"time"

	"wastecert-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimitConfig configures a fixed-window limiter keyed by client IP.
type RateLimitConfig struct {
	Name   string
	Limit  int
	Window time.Duration
}

const rateLimitPrefix = "ratelimit:"

// RateLimit counts requests per client IP in Redis and answers 429 once Limit is exceeded
// inside Window. When Redis fails the request is let through.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
			return c.Next()
		}
		secs := int64(cfg.Window / time.Second)
		if secs < 1 {
			secs = 1
		}
		window := time.Now().Unix() / secs
		key := rateLimitPrefix + cfg.Name + ":" + c.IP() + ":" + strconv.FormatInt(window, 10)
		ctx := c.UserContext()

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, cfg.Window)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("limiter", cfg.Name).Msg("rate limiter unavailable")
			return c.Next()
		}

		n := incr.Val()
		remaining := int64(cfg.Limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if n > int64(cfg.Limit) {
			return response.TooManyRequests(c, int(secs))
		}
		return c.Next()
	}
}
