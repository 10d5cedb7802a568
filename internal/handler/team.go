package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/middleware"
	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
	"github.com/funnelhub/backend/internal/service"
)

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

func (h *Handler) ListTeamMembers(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}

	members, err := h.teamSvc.ListMembers(c.Context(), userID, projectID)
	if err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{
		"members": members,
	})
}

func (h *Handler) InviteTeamMember(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}

	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	member, err := h.teamSvc.Invite(c.Context(), userID, projectID, req.Email, model.TeamRole(req.Role))
	if err != nil {
		return teamError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}

func (h *Handler) AcceptInvite(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req AcceptInviteRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "token is required",
		})
	}

	member, err := h.teamSvc.AcceptInvite(c.Context(), userID, middleware.GetUserEmail(c), req.Token)
	if err != nil {
		return teamError(c, err)
	}

	return c.JSON(member)
}

func (h *Handler) RemoveTeamMember(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}
	memberID, err := uuid.Parse(c.Params("member_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid member id",
		})
	}

	if err := h.teamSvc.RemoveMember(c.Context(), userID, projectID, memberID); err != nil {
		return teamError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func teamError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	case errors.Is(err, repository.ErrInviteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invite not found"})
	case errors.Is(err, service.ErrOwnerOnly), errors.Is(err, service.ErrAccessDenied), errors.Is(err, service.ErrInviteMismatch):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyInvited), errors.Is(err, service.ErrInvalidTeamRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTeamLimit):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
