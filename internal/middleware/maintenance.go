package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gaddamnithinreddy/templatestore/internal/audit"
)

// MaintenanceChecker reports whether the store is in maintenance mode.
type MaintenanceChecker interface {
	MaintenanceMode(ctx context.Context) bool
}

// Maintenance blocks storefront API routes while maintenance mode is on.
// Downloads stay open: access to already-purchased files is preserved.
// Admin routes and health stay open so operators can turn the mode off.
func Maintenance(settings MaintenanceChecker) fiber.Handler {
	exempt := []string{"/health", "/metrics", "/downloads/", "/api/admin/"}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range exempt {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}
		if settings.MaintenanceMode(c.UserContext()) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "store is under maintenance", "code": "MAINTENANCE",
			})
		}
		return c.Next()
	}
}

// RequestMeta attaches the caller's IP and user agent to the request context
// so audit entries written deeper in the stack carry them.
func RequestMeta() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := audit.WithRequestMeta(c.UserContext(), audit.RequestMeta{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		})
		c.SetUserContext(ctx)
		return c.Next()
	}
}
