package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"socialapp/internal/logger"
)

// RestrictAPIRoot blocks the bare /api/ index for clients outside allowed.
// Every other path passes.
func RestrictAPIRoot(allowed []string, log *logger.Logger) fiber.Handler {
	allowSet := make(map[string]bool, len(allowed))
	for _, ip := range allowed {
		allowSet[ip] = true
	}
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if (path == "/api/" || path == "/api") && !allowSet[c.IP()] {
			log.Info("blocked api index request", "ip", c.IP())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access to /api/ is restricted.",
			})
		}
		return c.Next()
	}
}

// OTPRestrict only lets unauthenticated callers PATCH the otp endpoints.
func OTPRestrict(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Path(), "/api/otp/") {
			return c.Next()
		}
		if _, ok := authenticate(c, tokens); ok {
			return c.Next()
		}
		if c.Method() != fiber.MethodPatch {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Unauthorized access.",
			})
		}
		return c.Next()
	}
}
