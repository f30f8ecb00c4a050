package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/dashboard", func(c *fiber.Ctx) error {
		stats, err := svc.Dashboard(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})

	r.Get("/users", func(c *fiber.Ctx) error {
		users, err := svc.ListUsers(c.Context(), c.QueryInt("page", 1), c.QueryInt("per_page", 20))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"users": users})
	})

	r.Put("/users/:id/flags", func(c *fiber.Ctx) error {
		var req UserFlagsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if err := svc.SetUserFlags(c.Context(), c.Params("id"), req); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "user not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "updated"})
	})
}
