// handlers/admin_routes.go
package handlers

import (
	"aethex-api/middleware"
	"aethex-api/models"
	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

type grantXPRequest struct {
	UserID string `json:"user_id"`
	XP     int64  `json:"xp"`
	Reason string `json:"reason"`
}

func SetupAdminRoutes(api fiber.Router, d Deps) {
	// 🔐 every route below needs the admin role
	admin := api.Group("/admin", d.UserAuth, middleware.RequireRole(d.Roles, models.RoleAdmin))

	admin.Get("/profiles", func(c *fiber.Ctx) error {
		list, err := d.Profiles.Search(c.UserContext(), c.Query("q"), queryInt(c, "limit", 50))
		if err != nil {
			return fail(c, err, "failed to search profiles")
		}
		return c.JSON(list)
	})

	admin.Get("/applications", func(c *fiber.Ctx) error {
		list, total, err := d.Applications.List(c.UserContext(), services.ApplicationFilter{
			Type:   c.Query("type"),
			Status: c.Query("status"),
			Limit:  queryInt(c, "limit", 50),
			Offset: queryInt(c, "offset", 0),
		})
		if err != nil {
			return fail(c, err, "failed to load applications")
		}
		return c.JSON(fiber.Map{"items": list, "total": total})
	})

	admin.Patch("/applications/:id/status", func(c *fiber.Ctx) error {
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		app, err := d.Applications.UpdateStatus(c.UserContext(), c.Params("id"), models.ApplicationStatus(req.Status))
		if err != nil {
			return fail(c, err, "failed to update application")
		}
		return c.JSON(app)
	})

	admin.Post("/roles", func(c *fiber.Ctx) error {
		var req services.RoleRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		if err := d.Roles.Assign(c.UserContext(), req); err != nil {
			return fail(c, err, "failed to assign role")
		}
		return c.JSON(fiber.Map{"success": true})
	})

	admin.Delete("/roles", func(c *fiber.Ctx) error {
		var req services.RoleRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		if err := d.Roles.Revoke(c.UserContext(), req); err != nil {
			return fail(c, err, "failed to revoke role")
		}
		return c.JSON(fiber.Map{"success": true})
	})

	admin.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req grantXPRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		reason := req.Reason
		if reason == "" {
			reason = "admin:" + userID(c)
		}
		prof, err := d.Progression.GrantXP(c.UserContext(), req.UserID, req.XP, reason)
		if err != nil {
			return fail(c, err, "failed to grant XP")
		}
		return c.JSON(prof)
	})

	admin.Get("/achievements", func(c *fiber.Ctx) error {
		list, err := d.Achievements.Catalog(c.UserContext())
		if err != nil {
			return fail(c, err, "failed to load achievements")
		}
		return c.JSON(list)
	})

	admin.Post("/achievements", func(c *fiber.Ctx) error {
		var req services.CreateAchievementRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		a, err := d.Achievements.Create(c.UserContext(), req)
		if err != nil {
			return fail(c, err, "failed to create achievement")
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	})

	admin.Post("/opportunities", func(c *fiber.Ctx) error {
		var req services.CreateOpportunityRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		opp, err := d.Applications.CreateOpportunity(c.UserContext(), req)
		if err != nil {
			return fail(c, err, "failed to create opportunity")
		}
		return c.Status(fiber.StatusCreated).JSON(opp)
	})

	admin.Get("/donations", func(c *fiber.Ctx) error {
		list, err := d.Donations.List(c.UserContext(), queryInt(c, "limit", 100))
		if err != nil {
			return fail(c, err, "failed to load donations")
		}
		return c.JSON(list)
	})
}
