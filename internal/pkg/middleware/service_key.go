package middleware

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/versemind/VerseMind/internal/pkg/env"
)

// ServiceKeyAuthMiddleware guards the internal mutation endpoints. Consume
// and top-up adjust another principal's balance, so they run behind a
// dedicated service credential and are only ever called by trusted internal
// services (the study-guide generator, the payment-completion worker) -
// never directly by end-user clients.
func ServiceKeyAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		configured := strings.TrimSpace(env.GetEnv("SERVICE_API_KEY", ""))
		if configured == "" {
			log.Print("service key middleware: SERVICE_API_KEY not configured")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service_unavailable", "message": "Internal API disabled"})
		}

		presented := extractServiceKey(c)
		if presented == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing service key"})
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid service key"})
		}

		return c.Next()
	}
}

func extractServiceKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.Get("X-Service-Key"))
	if key != "" {
		return key
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
