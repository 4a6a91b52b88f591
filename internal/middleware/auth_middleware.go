package middleware

import (
	"strings"

	"go-powder-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth
const (
	LocalOperator = "operator"
	LocalName     = "operator_name"
	LocalScopes   = "operator_scopes"
)

// RequireAuth is middleware that validates the bearer token and sets operator info in context
func RequireAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(secret, parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(LocalOperator, claims.Subject)
		c.Locals(LocalName, claims.Name)
		c.Locals(LocalScopes, claims.Scopes)

		return c.Next()
	}
}

// RequireScope checks if the authenticated operator holds the required scope
func RequireScope(requiredScope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopes, ok := c.Locals(LocalScopes).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No scopes found"})
		}

		for _, s := range scopes {
			if s == requiredScope {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredScope + "' scope",
		})
	}
}

// Operator returns the authenticated operator, or "system" when auth is disabled
func Operator(c *fiber.Ctx) string {
	if op, ok := c.Locals(LocalOperator).(string); ok && op != "" {
		return op
	}
	return "system"
}
