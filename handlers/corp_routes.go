// handlers/corp_routes.go
package handlers

import (
	"aethex-api/middleware"
	"aethex-api/models"
	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

type statusRequest struct {
	Status string `json:"status"`
}

type availabilityRequest struct {
	Availability string `json:"availability"`
}

func SetupCorpRoutes(api fiber.Router, d Deps) {
	staffOnly := middleware.RequireRole(d.Roles, models.RoleStaff, models.RoleAdmin)

	// 🔐 Client Hub: clients see their own rows, staff see everything
	corp := api.Group("/corp", d.UserAuth)

	viewer := func(c *fiber.Ctx) (services.Viewer, error) {
		return d.Corp.ViewerFor(c.UserContext(), userID(c))
	}

	corp.Get("/contracts", func(c *fiber.Ctx) error {
		v, err := viewer(c)
		if err != nil {
			return fail(c, err, "failed to resolve roles")
		}
		list, err := d.Corp.Contracts(c.UserContext(), v, c.Query("status"))
		if err != nil {
			return fail(c, err, "failed to load contracts")
		}
		return c.JSON(list)
	})

	corp.Get("/contracts/:id", func(c *fiber.Ctx) error {
		v, err := viewer(c)
		if err != nil {
			return fail(c, err, "failed to resolve roles")
		}
		ct, err := d.Corp.Contract(c.UserContext(), v, c.Params("id"))
		if err != nil {
			return fail(c, err, "contract not available")
		}
		return c.JSON(ct)
	})

	corp.Post("/contracts", staffOnly, func(c *fiber.Ctx) error {
		var req services.CreateContractRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		ct, err := d.Corp.CreateContract(c.UserContext(), req)
		if err != nil {
			return fail(c, err, "failed to create contract")
		}
		return c.Status(fiber.StatusCreated).JSON(ct)
	})

	corp.Patch("/contracts/:id/status", staffOnly, func(c *fiber.Ctx) error {
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		ct, err := d.Corp.SetContractStatus(c.UserContext(), c.Params("id"), models.ContractStatus(req.Status))
		if err != nil {
			return fail(c, err, "failed to update contract")
		}
		return c.JSON(ct)
	})

	corp.Get("/invoices", func(c *fiber.Ctx) error {
		v, err := viewer(c)
		if err != nil {
			return fail(c, err, "failed to resolve roles")
		}
		list, err := d.Corp.Invoices(c.UserContext(), v, c.Query("status"))
		if err != nil {
			return fail(c, err, "failed to load invoices")
		}
		return c.JSON(list)
	})

	corp.Post("/invoices", staffOnly, func(c *fiber.Ctx) error {
		var req services.CreateInvoiceRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		inv, err := d.Corp.CreateInvoice(c.UserContext(), req)
		if err != nil {
			return fail(c, err, "failed to create invoice")
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	})

	corp.Patch("/invoices/:id/status", staffOnly, func(c *fiber.Ctx) error {
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		inv, err := d.Corp.SetInvoiceStatus(c.UserContext(), c.Params("id"), models.InvoiceStatus(req.Status))
		if err != nil {
			return fail(c, err, "failed to update invoice")
		}
		return c.JSON(inv)
	})

	// 👥 Staff dashboard
	corp.Get("/team", staffOnly, func(c *fiber.Ctx) error {
		team, err := d.Corp.Team(c.UserContext(), c.Query("availability"))
		if err != nil {
			return fail(c, err, "failed to load team")
		}
		return c.JSON(team)
	})

	corp.Patch("/team/me/availability", staffOnly, func(c *fiber.Ctx) error {
		var req availabilityRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		prof, err := d.Profiles.SetAvailability(c.UserContext(), userID(c), models.Availability(req.Availability))
		if err != nil {
			return fail(c, err, "failed to update availability")
		}
		return c.JSON(prof)
	})
}
