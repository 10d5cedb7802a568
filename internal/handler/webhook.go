package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/funnelhub/backend/internal/billing"
)

// StripeWebhook receives billing events pushed by Stripe. The signature is
// checked against the endpoint secret before anything is parsed; a failed
// check returns 400 so Stripe retries are limited to transient errors.
func (h *Handler) StripeWebhook(c *fiber.Ctx) error {
	if !h.cfg.Stripe.Configured() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "billing is not configured",
		})
	}

	event, err := billing.VerifyEvent(c.Body(), c.Get("Stripe-Signature"), h.cfg.Stripe.WebhookSecret)
	if err != nil {
		log.Printf("WARNING: webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	if err := h.billingSvc.HandleEvent(c.Context(), event); err != nil {
		log.Printf("WARNING: failed to process billing event %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to process event",
		})
	}

	return c.JSON(fiber.Map{
		"received": true,
	})
}
