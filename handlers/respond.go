package handlers

import (
	"errors"
	"log"
	"strconv"

	"aethex-api/middleware"
	"aethex-api/services"

	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto a status code and the usual
// {"error","cause"} body. msg is the message shown to the user.
func fail(c *fiber.Ctx, err error, msg string) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrTableMissing):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidToken):
		status = fiber.StatusUnauthorized
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ [HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid request body",
		"cause": err.Error(),
	})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

func userID(c *fiber.Ctx) string {
	return middleware.UserID(c)
}
