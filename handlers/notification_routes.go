package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(api fiber.Router, d Deps) {
	// EventSource cannot send headers, so the stream has its own auth
	api.Get("/notifications/stream", d.StreamAuth, d.Notifications.StreamNotificationsSSE)

	notes := api.Group("/notifications", d.UserAuth)

	notes.Get("/", func(c *fiber.Ctx) error {
		list, err := d.Notifications.List(c.UserContext(), userID(c), c.QueryBool("unread"), queryInt(c, "limit", 50))
		if err != nil {
			return fail(c, err, "failed to load notifications")
		}
		return c.JSON(list)
	})

	notes.Patch("/:id/read", func(c *fiber.Ctx) error {
		if err := d.Notifications.MarkRead(c.UserContext(), userID(c), c.Params("id")); err != nil {
			return fail(c, err, "notification not found")
		}
		return c.JSON(fiber.Map{"success": true})
	})

	notes.Post("/read-all", func(c *fiber.Ctx) error {
		n, err := d.Notifications.MarkAllRead(c.UserContext(), userID(c))
		if err != nil {
			return fail(c, err, "failed to update notifications")
		}
		return c.JSON(fiber.Map{"success": true, "updated": n})
	})
}
