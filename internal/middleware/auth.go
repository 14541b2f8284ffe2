package middleware

import (
	"strings"

	"github.com/Blessan-Corley/fixly-server/internal/models"
	"github.com/Blessan-Corley/fixly-server/internal/utils"
	"github.com/gofiber/fiber/v2"
)

const sessionLocalKey = "session_claims"

// SessionClaims pulls the parsed claims set by the auth middleware, or
// nil when the request is unauthenticated.
func SessionClaims(c *fiber.Ctx) *utils.SessionClaims {
	claims, _ := c.Locals(sessionLocalKey).(*utils.SessionClaims)
	return claims
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies("fixly_session")
}

// OptionalAuth parses a session token when one is present but lets
// unauthenticated requests through. Signup needs this: the google
// method checks the session itself.
func OptionalAuth(tokens *utils.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if claims, err := tokens.ParseSessionToken(token); err == nil {
				c.Locals(sessionLocalKey, claims)
			}
		}
		return c.Next()
	}
}

// RequireAuth rejects requests without a valid session token.
func RequireAuth(tokens *utils.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "authentication required",
			})
		}
		claims, err := tokens.ParseSessionToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid or expired session",
			})
		}
		c.Locals(sessionLocalKey, claims)
		return c.Next()
	}
}

// RequireAdmin gates a route to admin sessions. Runs after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := SessionClaims(c)
		if claims == nil || claims.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "admin access required",
			})
		}
		return c.Next()
	}
}
