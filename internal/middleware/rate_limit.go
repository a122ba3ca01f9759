package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/quizdeck/quizdeck-api/internal/utils"
)

// RateLimit throttles a route group. Authenticated requests are keyed by the
// token subject; anonymous ones (the login endpoints) fall back to client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			key := fmt.Sprintf("%v", c.Locals("user_id"))
			if key == "" || key == "<nil>" || key == "0" {
				key = c.IP()
			}
			return identifier + ":" + key
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}
