package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"socialapp/internal/config"
	"socialapp/internal/logger"
	"socialapp/internal/ratelimit"
)

// RateLimit throttles requests with a sliding window. Callers with a valid
// access token are counted per user, everyone else per client IP. When the
// store is unreachable the request is let through.
func RateLimit(store ratelimit.Store, tokens TokenValidator, cfg config.RateLimitConfig, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, limit, window := "ip:"+c.IP(), cfg.IPLimit, cfg.IPWindow
		if claims, ok := authenticate(c, tokens); ok {
			if userID, _ := claims["user_id"].(string); userID != "" {
				key, limit, window = "user:"+userID, cfg.TokenLimit, cfg.TokenWindow
			}
		}
		if limit <= 0 || window <= 0 {
			return c.Next()
		}

		allowed, retryAfter, err := store.Allow(c.UserContext(), key, limit, window)
		if err != nil {
			log.Warn("rate limit store unavailable", "key", key, "error", err)
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retrySeconds(retryAfter)))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Request was throttled",
			})
		}
		return c.Next()
	}
}

func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
