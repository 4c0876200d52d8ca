package middleware

import (
	"log"

	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through when the authenticated user holds any
// of roles. It must run after UserContextMiddleware.
func RequireRole(rs *services.RoleService, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(LocalService) == true {
			return c.Next()
		}
		userID := UserID(c)
		if userID == "" {
			return unauthorized(c, "authentication required")
		}
		ok, err := rs.HasAny(c.UserContext(), userID, roles...)
		if err != nil {
			log.Printf("❌ [ROLES] lookup failed for %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to check roles",
				"cause": err.Error(),
			})
		}
		if !ok {
			log.Printf("🚫 [ROLES] %s lacks %v for %s", userID, roles, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}
		c.Locals(LocalRoles, roles)
		return c.Next()
	}
}
