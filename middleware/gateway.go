// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log"

	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

// LocalService marks requests authenticated with the internal service token.
const LocalService = "service_caller"

// ServiceTokenOrUser accepts either the shared service token (internal
// callers such as the awarding endpoint's backend jobs) or a normal user
// bearer token. Pair with RequireRole, which passes service callers through.
func ServiceTokenOrUser(serviceToken string, verifier *services.AuthVerifier, profiles *services.ProfileService) fiber.Handler {
	userAuth := UserContextMiddleware(verifier, profiles)
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if ok && serviceToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(serviceToken)) == 1 {
			log.Printf("✅ [SERVICE_AUTH] service call accepted for %s", c.Path())
			c.Locals(LocalService, true)
			return c.Next()
		}
		return userAuth(c)
	}
}
