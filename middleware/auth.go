// middleware/auth.go
package middleware

import (
	"strings"

	"match-stake-system/utils"

	"github.com/gofiber/fiber/v2"
)

// CallerContextMiddleware extracts the caller's address set by the Gateway.
// Mutating routes require it; read-only routes pass through with an empty
// caller.
func CallerContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := strings.TrimSpace(c.Get("X-Caller-Address"))
		c.Locals("caller", caller)
		return c.Next()
	}
}

// RequireCaller guards mutating routes: the Gateway must forward an
// authenticated caller address.
func RequireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, _ := c.Locals("caller").(string)
		if caller == "" {
			utils.Log.Warnf("❌ [CALLER_CTX] X-Caller-Address required but missing on: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Caller-Address — request must come through gateway with auth context",
			})
		}
		return c.Next()
	}
}

// Caller returns the caller address attached by CallerContextMiddleware.
func Caller(c *fiber.Ctx) string {
	caller, _ := c.Locals("caller").(string)
	return caller
}
