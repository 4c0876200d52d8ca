package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redisClient *redis.Client
}

// NewRateLimiter returns a limiter backed by client. A nil client disables
// limiting.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redisClient: client}
}

// Limit allows limit requests per client IP per window for the named bucket.
// Redis errors let the request through.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.redisClient == nil || limit <= 0 {
			return c.Next()
		}
		ctx := c.UserContext()
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.IP())

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("⚠️ [RATE] redis unavailable, skipping limit: %v", err)
			return c.Next()
		}
		// first hit opens the window
		if count == 1 {
			if err := rl.redisClient.Expire(ctx, key, window).Err(); err != nil {
				log.Printf("⚠️ [RATE] expire %s failed: %v", key, err)
			}
		}

		if count > int64(limit) {
			ttl, err := rl.redisClient.TTL(ctx, key).Result()
			if err != nil || ttl < 0 {
				// a key without a TTL would block this IP for good
				if err := rl.redisClient.Expire(ctx, key, window).Err(); err != nil {
					log.Printf("⚠️ [RATE] expire %s failed: %v", key, err)
				}
				ttl = window
			}
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%.0f", ttl.Seconds()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests",
				"retry_after": fmt.Sprintf("%.0f seconds", ttl.Seconds()),
			})
		}
		return c.Next()
	}
}
