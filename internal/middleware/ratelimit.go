package middleware

import (
	"time"

	"github.com/Blessan-Corley/fixly-server/internal/metrics"
	"github.com/Blessan-Corley/fixly-server/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
)

// RateLimit throttles an action by client fingerprint (IP). Every
// attempt counts, whatever the eventual outcome of the request.
func RateLimit(limiter *ratelimit.Limiter, action string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, err := limiter.Allow(c.Context(), action, c.IP(), limit, window)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "rate limiter error",
			})
		}
		if !decision.Allowed {
			metrics.RateLimited.WithLabelValues(action).Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":    false,
				"message":    "too many requests, please try again later",
				"retryAfter": int(decision.RetryAfter.Seconds()),
			})
		}
		return c.Next()
	}
}
