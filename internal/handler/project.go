package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/middleware"
	"github.com/funnelhub/backend/internal/repository"
	"github.com/funnelhub/backend/internal/service"
)

type CreateProjectRequest struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

type UpdateProjectRequest struct {
	Name *string         `json:"name"`
	Data json.RawMessage `json:"data"`
}

func (h *Handler) ListProjects(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	projects, err := h.projectSvc.ListProjects(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list projects",
		})
	}

	return c.JSON(fiber.Map{
		"projects": projects,
	})
}

func (h *Handler) GetTemplates(c *fiber.Ctx) error {
	templates, err := h.projectSvc.ListTemplates(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list templates",
		})
	}

	return c.JSON(fiber.Map{
		"templates": templates,
	})
}

func (h *Handler) GetProject(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}

	project, err := h.projectSvc.GetProject(c.Context(), userID, projectID)
	if err != nil {
		return projectError(c, err)
	}

	return c.JSON(project)
}

func (h *Handler) CreateProject(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	project, err := h.projectSvc.CreateProject(c.Context(), userID, req.Name, req.Data)
	if err != nil {
		return projectError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *Handler) UpdateProject(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}

	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	project, err := h.projectSvc.UpdateProject(c.Context(), userID, projectID, req.Name, req.Data)
	if err != nil {
		return projectError(c, err)
	}

	return c.JSON(project)
}

func (h *Handler) DeleteProject(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}

	if err := h.projectSvc.DeleteProject(c.Context(), userID, projectID); err != nil {
		return projectError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (h *Handler) DuplicateProject(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid project id",
		})
	}

	clone, err := h.projectSvc.DuplicateProject(c.Context(), userID, projectID)
	if err != nil {
		return projectError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(clone)
}

func projectError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	case errors.Is(err, service.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrReadOnlyAccess), errors.Is(err, service.ErrOwnerOnly):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProjectLimit):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
