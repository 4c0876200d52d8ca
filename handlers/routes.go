package handlers

import (
	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

// Deps is everything the route groups need. Auth handlers are built in main
// so tests can swap them.
type Deps struct {
	Profiles      *services.ProfileService
	Progression   *services.ProgressionService
	Achievements  *services.AchievementService
	Applications  *services.ApplicationService
	Corp          *services.CorpService
	Roles         *services.RoleService
	Projects      *services.ProjectService
	Donations     *services.DonationService
	Notifications *services.NotificationService

	UserAuth      fiber.Handler // bearer token required
	OptionalUser  fiber.Handler // bearer token when present
	StreamAuth    fiber.Handler // bearer header or ?token=
	ServiceOrUser fiber.Handler // service token or bearer token
	FormLimit     fiber.Handler // per-IP limit on public forms
}

func passthrough(c *fiber.Ctx) error { return c.Next() }

func (d *Deps) defaults() {
	for _, h := range []*fiber.Handler{&d.OptionalUser, &d.FormLimit} {
		if *h == nil {
			*h = passthrough
		}
	}
	if d.StreamAuth == nil {
		d.StreamAuth = d.UserAuth
	}
	if d.ServiceOrUser == nil {
		d.ServiceOrUser = d.UserAuth
	}
}

// Setup mounts every route group under /api.
func Setup(app *fiber.App, d Deps) {
	d.defaults()
	api := app.Group("/api")

	SetupPublicRoutes(api, d)
	SetupProfileRoutes(api, d)
	SetupAchievementRoutes(api, d)
	SetupNotificationRoutes(api, d)
	SetupCorpRoutes(api, d)
	SetupAdminRoutes(api, d)
}
