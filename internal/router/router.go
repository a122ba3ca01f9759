package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quizdeck/quizdeck-api/internal/config"
	"github.com/quizdeck/quizdeck-api/internal/handler"
	"github.com/quizdeck/quizdeck-api/internal/middleware"
	"github.com/quizdeck/quizdeck-api/internal/observability"
	"github.com/quizdeck/quizdeck-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AssignmentHandler *handler.AssignmentHandler
	AttemptHandler    *handler.AttemptHandler
	ResultsHandler    *handler.ResultsHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		// Login attempts are throttled per client to slow credential guessing.
		auth := api.Group("/auth", middleware.RateLimit("auth", 5, 15*time.Minute))
		deps.AuthHandler.Register(auth)
	}

	teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(service.RoleTeacher))
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(teacher.Group("/assignments"))
	}
	if deps.ResultsHandler != nil {
		deps.ResultsHandler.Register(teacher.Group("/results"))
	}
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(teacher.Group("/analytics"))
	}

	if deps.AttemptHandler != nil {
		student := api.Group("/student", jwtMiddleware, middleware.RequireRole(service.RoleStudent))
		deps.AttemptHandler.Register(student)
	}
}
