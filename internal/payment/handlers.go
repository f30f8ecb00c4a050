package payment

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"event_submission_fee_sgd": svc.FeeSGD(),
			"currency":                 "SGD",
		})
	})

	r.Post("/intent", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			EventID string `json:"event_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.EventID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "event_id required")
		}
		p, err := svc.CreateSubmissionIntent(c.Context(), c.Locals("user_id").(string), body.EventID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})

	r.Post("/confirm", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			IntentID string `json:"intent_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.IntentID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "intent_id required")
		}
		p, err := svc.Confirm(c.Context(), body.IntentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})

	r.Post("/webhook", func(c *fiber.Ctx) error {
		body := c.Body()
		if !svc.VerifyWebhook(body, c.Get("X-Webhook-Signature")) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
		}

		var event struct {
			Type string `json:"type"`
			Data struct {
				IntentID string `json:"intent_id"`
			} `json:"data"`
		}
		if err := c.BodyParser(&event); err != nil || event.Data.IntentID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		p, err := svc.ApplyWebhook(c.Context(), event.Data.IntentID, event.Type)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"status": p.Status})
	})
}
