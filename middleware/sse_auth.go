// middleware/sse_auth.go
package middleware

import (
	"log"
	"strings"

	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware authenticates EventSource requests, which cannot set
// headers, from the `token` query parameter. A bearer header still wins
// when present.
//
// Usage:
//
//	api.Get("/notifications/stream", middleware.SSEAuthMiddleware(verifier, profiles), notifications.StreamNotificationsSSE)
func SSEAuthMiddleware(verifier *services.AuthVerifier, profiles *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token in query",
			})
		}

		id, err := verifier.Verify(token)
		if err != nil {
			log.Printf("[SSEAuth] ❌ token rejected (len=%d) from %s: %v", len(token), c.IP(), err)
			return unauthorized(c, "Unauthorized")
		}

		log.Printf("[SSEAuth] ✅ Authenticated user %s", id.UserID)
		return attachUser(c, id, profiles)
	}
}
