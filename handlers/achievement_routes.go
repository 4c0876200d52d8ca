package handlers

import (
	"aethex-api/middleware"
	"aethex-api/models"

	"github.com/gofiber/fiber/v2"
)

type awardRequest struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"` // id or code
}

func SetupAchievementRoutes(api fiber.Router, d Deps) {
	adminOnly := middleware.RequireRole(d.Roles, models.RoleAdmin)

	api.Get("/achievements/mine", d.UserAuth, func(c *fiber.Ctx) error {
		list, err := d.Achievements.UserAchievements(c.UserContext(), userID(c))
		if err != nil {
			return fail(c, err, "failed to load achievements")
		}
		return c.JSON(list)
	})

	api.Post("/achievements/activate", d.UserAuth, adminOnly, func(c *fiber.Ctx) error {
		n, err := d.Achievements.Activate(c.UserContext())
		if err != nil {
			return fail(c, err, "failed to activate achievements")
		}
		return c.JSON(fiber.Map{"success": true, "seeded": n})
	})

	api.Post("/achievements/award", d.ServiceOrUser, adminOnly, func(c *fiber.Ctx) error {
		var req awardRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		if req.UserID == "" || req.AchievementID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and achievement_id are required",
			})
		}
		res, err := d.Achievements.Award(c.UserContext(), req.UserID, req.AchievementID)
		if err != nil {
			return fail(c, err, "failed to award achievement")
		}
		return c.JSON(res)
	})
}
