package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	app.Use(RequireRole("teacher"))
	app.Get("/assignments", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	app := roleApp("Teacher")

	req := httptest.NewRequest(http.MethodGet, "/assignments", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	app := roleApp("student")

	req := httptest.NewRequest(http.MethodGet, "/assignments", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	app := roleApp("")

	req := httptest.NewRequest(http.MethodGet, "/assignments", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
