package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/funnelhub/backend/internal/middleware"
	"github.com/funnelhub/backend/internal/repository"
	"github.com/funnelhub/backend/internal/service"
)

type SyncBillingRequest struct {
	SessionID string `json:"session_id"`
}

type CheckoutRequest struct {
	PlanID       string `json:"plan_id"`
	Interval     string `json:"interval"`
	ReferralCode string `json:"referral_code"`
}

// SyncBilling is the pull path after the checkout redirect: the client posts
// the session ID and the server re-derives the subscription state from
// Stripe. Safe to call more than once.
func (h *Handler) SyncBilling(c *fiber.Ctx) error {
	if !h.cfg.Stripe.Configured() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "billing is not configured",
		})
	}

	var req SyncBillingRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	result, err := h.billingSvc.SyncSession(c.Context(), middleware.GetUserID(c), req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotResolved):
			return c.JSON(fiber.Map{
				"success": false,
				"message": "subscription found but the plan could not be identified",
			})
		case errors.Is(err, service.ErrUserNotMatched):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNoSubscription):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"plan":    result.Plan,
		"user_id": result.UserID,
	})
}

func (h *Handler) CreateCheckout(c *fiber.Ctx) error {
	if !h.cfg.Stripe.Configured() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "billing is not configured",
		})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil || req.PlanID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "plan_id is required",
		})
	}

	url, err := h.billingSvc.CreateCheckout(c.Context(), middleware.GetUserID(c), req.PlanID, req.Interval, req.ReferralCode)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "plan not found"})
		case errors.Is(err, service.ErrPlanNotPurchasable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"url": url,
	})
}
