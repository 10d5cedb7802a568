package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/funnelhub/backend/internal/config"
	"github.com/funnelhub/backend/internal/service"
)

type Handler struct {
	cfg         *config.Config
	profileSvc  *service.ProfileService
	planSvc     *service.PlanService
	projectSvc  *service.ProjectService
	teamSvc     *service.TeamService
	feedbackSvc *service.FeedbackService
	billingSvc  *service.BillingService
}

func New(
	cfg *config.Config,
	profileSvc *service.ProfileService,
	planSvc *service.PlanService,
	projectSvc *service.ProjectService,
	teamSvc *service.TeamService,
	feedbackSvc *service.FeedbackService,
	billingSvc *service.BillingService,
) *Handler {
	return &Handler{
		cfg:         cfg,
		profileSvc:  profileSvc,
		planSvc:     planSvc,
		projectSvc:  projectSvc,
		teamSvc:     teamSvc,
		feedbackSvc: feedbackSvc,
		billingSvc:  billingSvc,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
