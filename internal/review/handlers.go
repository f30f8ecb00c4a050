package review

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/event/:eventID", func(c *fiber.Ctx) error {
		reviews, err := svc.ListByEvent(c.Context(), c.Params("eventID"),
			c.QueryInt("page", 1), c.QueryInt("per_page", 20))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"reviews": reviews})
	})

	r.Get("/event/:eventID/stats", func(c *fiber.Ctx) error {
		stats, err := svc.EventStats(c.Context(), c.Params("eventID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})

	r.Get("/mine", authMiddleware, func(c *fiber.Ctx) error {
		reviews, err := svc.ListByUser(c.Context(), c.Locals("user_id").(string))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"reviews": reviews})
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil || req.EventID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "event_id required")
		}
		review, err := svc.Create(c.Context(), c.Locals("user_id").(string), req)
		if err != nil {
			if errors.Is(err, ErrAlreadyReviewed) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(review)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		review, err := svc.Update(c.Context(), c.Locals("user_id").(string), c.Params("id"), req)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			case errors.Is(err, ErrNotOwner):
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			default:
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		return c.JSON(review)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Locals("user_id").(string), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/report", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Report(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "reported"})
	})
}

// RegisterAdminRoutes mounts moderation endpoints; callers wrap the
// group with JWT and admin middlewares.
func RegisterAdminRoutes(r fiber.Router, svc *Service) {
	r.Get("/reported", func(c *fiber.Ctx) error {
		reviews, err := svc.Reported(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"reviews": reviews})
	})

	r.Post("/:id/moderate", func(c *fiber.Ctx) error {
		var body struct {
			Action string `json:"action"`
		}
		if err := c.BodyParser(&body); err != nil || (body.Action != "keep" && body.Action != "remove") {
			return fiber.NewError(fiber.StatusBadRequest, "action must be keep or remove")
		}
		if err := svc.Moderate(c.Context(), c.Params("id"), body.Action == "remove"); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": body.Action})
	})
}
