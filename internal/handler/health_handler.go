package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quizdeck/quizdeck-api/internal/config"
	"github.com/quizdeck/quizdeck-api/internal/utils"
)

var startedAt = time.Now().UTC()

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Service       string    `json:"service"`
	Environment   string    `json:"environment"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		payload := HealthResponse{
			Status:        "ok",
			Timestamp:     now,
			Service:       cfg.AppName,
			Environment:   cfg.AppEnv,
			UptimeSeconds: int64(now.Sub(startedAt).Seconds()),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
