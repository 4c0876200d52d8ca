// handlers/profile_routes.go
package handlers

import (
	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(api fiber.Router, d Deps) {
	// 🔐 /profile collides with the public /profiles prefix, so auth is per route
	api.Get("/profile/me", d.UserAuth, func(c *fiber.Ctx) error {
		prof, err := d.Profiles.Get(c.UserContext(), userID(c))
		if err != nil {
			return fail(c, err, "failed to load profile")
		}
		roles, err := d.Roles.RolesOf(c.UserContext(), prof.ID)
		if err != nil {
			return fail(c, err, "failed to load roles")
		}
		return c.JSON(fiber.Map{
			"profile":          prof,
			"roles":            roles,
			"xp_to_next_level": int64(prof.Level)*services.XPPerLevel - prof.TotalXP,
		})
	})

	api.Patch("/profile/me", d.UserAuth, func(c *fiber.Ctx) error {
		var req services.UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		prof, err := d.Profiles.Update(c.UserContext(), userID(c), req)
		if err != nil {
			return fail(c, err, "failed to update profile")
		}
		return c.JSON(prof)
	})

	api.Post("/profile/me/avatar", d.UserAuth, func(c *fiber.Ctx) error {
		fh, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "avatar file is required",
				"cause": err.Error(),
			})
		}
		f, err := fh.Open()
		if err != nil {
			return fail(c, err, "failed to read upload")
		}
		defer f.Close()

		prof, err := d.Profiles.UploadAvatar(c.UserContext(), userID(c), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
		if err != nil {
			return fail(c, err, "failed to upload avatar")
		}
		return c.JSON(prof)
	})

	api.Post("/profile/me/checkin", d.UserAuth, func(c *fiber.Ctx) error {
		res, err := d.Progression.RecordActivity(c.UserContext(), userID(c))
		if err != nil {
			return fail(c, err, "failed to record activity")
		}
		return c.JSON(res)
	})

	projects := api.Group("/projects", d.UserAuth)

	projects.Get("/", func(c *fiber.Ctx) error {
		list, err := d.Projects.Mine(c.UserContext(), userID(c))
		if err != nil {
			return fail(c, err, "failed to load projects")
		}
		return c.JSON(list)
	})

	projects.Post("/", func(c *fiber.Ctx) error {
		var req services.CreateProjectRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		res, err := d.Projects.Create(c.UserContext(), userID(c), req)
		if err != nil {
			return fail(c, err, "failed to create project")
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})
}
