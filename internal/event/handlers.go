package event

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		filter := ListFilter{
			CategorySlug: c.Query("category"),
			Search:       c.Query("search"),
			FeaturedOnly: c.QueryBool("featured"),
			Page:         c.QueryInt("page", 1),
			PerPage:      c.QueryInt("per_page", defaultPerPage),
		}
		if from := c.Query("date_from"); from != "" {
			d, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date_from must be YYYY-MM-DD")
			}
			filter.DateFrom = &d
		}
		if to := c.Query("date_to"); to != "" {
			d, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date_to must be YYYY-MM-DD")
			}
			filter.DateTo = &d
		}

		result, err := svc.List(c.Context(), filter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})

	r.Get("/nearby", func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
		}
		radius, _ := strconv.ParseFloat(c.Query("radius_km", "10"), 64)

		events, err := svc.Nearby(c.Context(), lat, lng, radius, c.QueryInt("limit", defaultPerPage))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"events": events})
	})

	r.Get("/featured", func(c *fiber.Ctx) error {
		events, err := svc.Featured(c.Context(), c.QueryInt("limit", 10))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"events": events})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		e, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "event not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		tags, err := svc.Tags(c.Context(), e.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"event": e, "tags": tags})
	})

	r.Post("/:id/click", func(c *fiber.Ctx) error {
		if err := svc.TrackClick(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "event not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "tracked"})
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req SubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		e, err := svc.Submit(c.Context(), c.Locals("user_id").(string), req, "user_submission")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		e, err := svc.UpdateOwn(c.Context(), c.Params("id"), c.Locals("user_id").(string), req)
		if err != nil {
			return ownerError(err)
		}
		return c.JSON(e)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteOwn(c.Context(), c.Params("id"), c.Locals("user_id").(string)); err != nil {
			return ownerError(err)
		}
		return c.JSON(fiber.Map{"status": "deleted"})
	})
}

func ownerError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "event not found")
	case errors.Is(err, ErrNotOwner):
		return fiber.NewError(fiber.StatusForbidden, "not the event owner")
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// RegisterAdminRoutes mounts the moderation surface; the caller wraps
// the group with JWT and admin middlewares.
func RegisterAdminRoutes(r fiber.Router, svc *Service) {
	r.Get("/pending", func(c *fiber.Ctx) error {
		events, err := svc.Pending(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"events": events})
	})

	r.Post("/", func(c *fiber.Ctx) error {
		var req SubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		e, err := svc.Submit(c.Context(), c.Locals("user_id").(string), req, "admin")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		e, err := svc.Update(c.Context(), c.Params("id"), req)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "event not found")
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(e)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "event not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/approve", func(c *fiber.Ctx) error {
		if err := svc.Approve(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "event not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "approved"})
	})

	r.Post("/:id/reject", func(c *fiber.Ctx) error {
		if err := svc.Reject(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no pending event to reject")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "rejected"})
	})

	r.Post("/:id/feature", func(c *fiber.Ctx) error {
		var body struct {
			Featured bool `json:"featured"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if err := svc.SetFeatured(c.Context(), c.Params("id"), body.Featured); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "event not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"featured": body.Featured})
	})
}
