// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRoles  = "user_roles"
)

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// UserContextMiddleware verifies the bearer token, makes sure the caller has a
// profile and attaches the identity to the request.
func UserContextMiddleware(verifier *services.AuthVerifier, profiles *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Authorization header format must be Bearer {token}")
		}
		id, err := verifier.Verify(token)
		if err != nil {
			log.Printf("🚫 [USER_CTX] rejected token on %s: %v", c.Path(), err)
			return unauthorized(c, "Invalid or expired token")
		}
		return attachUser(c, id, profiles)
	}
}

// OptionalUser attaches the identity when a valid bearer token is present
// and lets anonymous requests through untouched.
func OptionalUser(verifier *services.AuthVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if id, err := verifier.Verify(token); err == nil {
				c.Locals(LocalUserID, id.UserID)
				c.Locals(LocalEmail, id.Email)
			}
		}
		return c.Next()
	}
}

func attachUser(c *fiber.Ctx, id *services.Identity, profiles *services.ProfileService) error {
	if profiles != nil {
		if _, _, err := profiles.Ensure(c.UserContext(), id.UserID, id.Email); err != nil {
			log.Printf("❌ [USER_CTX] profile bootstrap failed for %s: %v", id.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile",
				"cause": err.Error(),
			})
		}
	}
	c.Locals(LocalUserID, id.UserID)
	c.Locals(LocalEmail, id.Email)
	return c.Next()
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
