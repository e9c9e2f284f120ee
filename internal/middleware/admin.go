// Package middleware holds the cross-cutting Fiber handlers: the admin
// access gate, per-IP rate limiting, maintenance mode and request metadata.
package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gaddamnithinreddy/templatestore/internal/auth"
)

// AdminEmailKey is the Locals key under which the gate stores the verified
// admin email for downstream handlers.
const AdminEmailKey = "admin_email"

// CredentialParser verifies a bearer token and returns its claims.
type CredentialParser interface {
	Parse(token string) (*auth.Claims, error)
}

// WhitelistChecker reports whether an email is on the admin whitelist.
type WhitelistChecker interface {
	IsWhitelisted(ctx context.Context, email string) (bool, error)
}

// SecurityRecorder records rejected admin requests.
type SecurityRecorder interface {
	Security(ctx context.Context, email, action, reason string, details map[string]any)
}

// AdminGate enforces the three-step admin check on every admin route:
// valid bearer credential, admin role, whitelist membership. Role alone is
// not sufficient. Forbidden outcomes are recorded as security events.
func AdminGate(parser CredentialParser, whitelist WhitelistChecker, security SecurityRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer credential", "code": "UNAUTHORIZED",
			})
		}

		claims, err := parser.Parse(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid bearer credential", "code": "UNAUTHORIZED",
			})
		}

		action := c.Method() + " " + c.Path()
		if claims.Role != auth.RoleAdmin {
			security.Security(c.UserContext(), claims.Email, action,
				"role is not admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient privilege", "code": "FORBIDDEN",
			})
		}

		whitelisted, err := whitelist.IsWhitelisted(c.UserContext(), claims.Email)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error", "code": "INTERNAL_ERROR",
			})
		}
		if !whitelisted {
			security.Security(c.UserContext(), claims.Email, action,
				"email not on admin whitelist", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient privilege", "code": "FORBIDDEN",
			})
		}

		c.Locals(AdminEmailKey, claims.Email)
		return c.Next()
	}
}
