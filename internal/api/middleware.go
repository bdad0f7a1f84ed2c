package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimiter returns a middleware allowing at most requests per window,
// with bursts up to the full window quota.
func RateLimiter(requests int, window time.Duration) fiber.Handler {
	limiter := rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)

	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded",
			})
		}
		return c.Next()
	}
}
