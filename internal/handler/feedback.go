package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/middleware"
	"github.com/funnelhub/backend/internal/repository"
	"github.com/funnelhub/backend/internal/service"
)

type CreateFeedbackRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *Handler) ListFeedback(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	entries, err := h.feedbackSvc.ListFeedback(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list feedback",
		})
	}

	return c.JSON(fiber.Map{
		"feedback": entries,
	})
}

func (h *Handler) CreateFeedback(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req CreateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	feedback, err := h.feedbackSvc.CreateFeedback(c.Context(), userID, req.Title, req.Description, req.Category)
	if err != nil {
		if errors.Is(err, service.ErrEmptyTitle) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create feedback",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(feedback)
}

func (h *Handler) VoteFeedback(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	feedbackID, err := uuid.Parse(c.Params("feedback_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid feedback id",
		})
	}

	voted, err := h.feedbackSvc.ToggleVote(c.Context(), feedbackID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "feedback not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to toggle vote",
		})
	}

	return c.JSON(fiber.Map{
		"voted": voted,
	})
}
