package handlers

import (
	"log"
	"time"

	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPublicRoutes(api fiber.Router, d Deps) {
	api.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if sqlDB, err := d.Profiles.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{"status": status, "time": time.Now().UTC()})
	})

	api.Get("/opportunities", func(c *fiber.Ctx) error {
		opps, err := d.Applications.Opportunities(c.UserContext(), c.Query("arm"), c.Query("track"))
		if err != nil {
			return fail(c, err, "failed to load opportunities")
		}
		return c.JSON(opps)
	})

	api.Post("/applications", d.FormLimit, d.OptionalUser, func(c *fiber.Ctx) error {
		var req services.SubmitApplicationRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		app, err := d.Applications.Submit(c.UserContext(), userID(c), req)
		if err != nil {
			return fail(c, err, services.GenericSubmitFailure)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":      true,
			"id":           app.ID,
			"submitted_at": app.SubmittedAt,
		})
	})

	api.Get("/donate/tiers", func(c *fiber.Ctx) error {
		return c.JSON(d.Donations.Tiers())
	})

	api.Post("/donate/pledges", d.FormLimit, func(c *fiber.Ctx) error {
		var req services.PledgeRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		p, err := d.Donations.Pledge(c.UserContext(), req)
		if err != nil {
			return fail(c, err, "We couldn't record your pledge. Please try again.")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "pledge": p})
	})

	api.Get("/achievements", func(c *fiber.Ctx) error {
		list, err := d.Achievements.Catalog(c.UserContext())
		if err != nil {
			return fail(c, err, "failed to load achievements")
		}
		return c.JSON(list)
	})

	api.Get("/leaderboard", func(c *fiber.Ctx) error {
		board, err := d.Profiles.Leaderboard(c.UserContext(), queryInt(c, "limit", 25))
		if err != nil {
			return fail(c, err, "failed to load leaderboard")
		}
		return c.JSON(board)
	})

	api.Get("/profiles/:username", func(c *fiber.Ctx) error {
		prof, err := d.Profiles.GetByUsername(c.UserContext(), c.Params("username"))
		if err != nil {
			return fail(c, err, "profile not found")
		}
		unlocks, err := d.Achievements.UserAchievements(c.UserContext(), prof.ID)
		if err != nil {
			log.Printf("⚠️ [PROFILE] achievements for %s unavailable: %v", prof.Username, err)
		}
		return c.JSON(fiber.Map{
			"username":       prof.Username,
			"full_name":      prof.FullName,
			"avatar_url":     prof.AvatarURL,
			"bio":            prof.Bio,
			"arm":            prof.Arm,
			"total_xp":       prof.TotalXP,
			"level":          prof.Level,
			"current_streak": prof.CurrentStreak,
			"longest_streak": prof.LongestStreak,
			"achievements":   unlocks,
		})
	})
}
