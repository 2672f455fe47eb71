package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// LocalsAPIClient is set to true once a request carried a valid token.
const LocalsAPIClient = "API_CLIENT"

// APITokenAuthMiddleware authenticates requests carrying the service API token.
// An empty token disables the protected routes.
func APITokenAuthMiddleware(token string) fiber.Handler {
	token = strings.TrimSpace(token)
	if token == "" {
		log.Warn("[API] API_TOKEN is not set, protected API routes are disabled")
	}

	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service_unavailable", "message": "API token not configured"})
		}

		supplied := extractAPIKeyFromHeader(c)
		if supplied == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			log.Warnf("[API] Rejected API request from %s: invalid API key", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
		}

		c.Locals(LocalsAPIClient, true)
		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
