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

// AdminHandler serves the back-office surface. Every route behind it runs
// after middleware.AdminAuth, so handlers trust middleware.GetAdminID.
type AdminHandler struct {
	adminSvc     *service.AdminService
	affiliateSvc *service.AffiliateService
	ledgerSvc    *service.LedgerService
	feedbackSvc  *service.FeedbackService
}

func NewAdminHandler(
	adminSvc *service.AdminService,
	affiliateSvc *service.AffiliateService,
	ledgerSvc *service.LedgerService,
	feedbackSvc *service.FeedbackService,
) *AdminHandler {
	return &AdminHandler{
		adminSvc:     adminSvc,
		affiliateSvc: affiliateSvc,
		ledgerSvc:    ledgerSvc,
		feedbackSvc:  feedbackSvc,
	}
}

func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.adminSvc.GetStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load stats",
		})
	}
	return c.JSON(stats)
}

// --- Users ---

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	search := c.Query("search")

	users, total, err := h.adminSvc.ListUsers(c.Context(), limit, offset, search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
	})
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	user, err := h.adminSvc.GetUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load user",
		})
	}

	return c.JSON(user)
}

type SetUserPlanRequest struct {
	Plan string `json:"plan"`
}

func (h *AdminHandler) SetUserPlan(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	var req SetUserPlanRequest
	if err := c.BodyParser(&req); err != nil || req.Plan == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "plan is required",
		})
	}

	if err := h.adminSvc.SetUserPlan(c.Context(), middleware.GetAdminID(c), userID, req.Plan); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPlan):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// --- Plans ---

func (h *AdminHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.adminSvc.ListPlans(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list plans",
		})
	}
	return c.JSON(fiber.Map{
		"plans": plans,
	})
}

type PlanRequest struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	PriceMonthly   float64 `json:"price_monthly"`
	PriceYearly    float64 `json:"price_yearly"`
	MaxProjects    int     `json:"max_projects"`
	MaxTeamMembers int     `json:"max_team_members"`
	IsActive       *bool   `json:"is_active"`
	SortOrder      int     `json:"sort_order"`
}

func (r *PlanRequest) toModel() *model.Plan {
	plan := &model.Plan{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		PriceMonthly:   r.PriceMonthly,
		PriceYearly:    r.PriceYearly,
		MaxProjects:    r.MaxProjects,
		MaxTeamMembers: r.MaxTeamMembers,
		IsActive:       true,
		SortOrder:      r.SortOrder,
	}
	if r.IsActive != nil {
		plan.IsActive = *r.IsActive
	}
	return plan
}

func (h *AdminHandler) CreatePlan(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil || req.ID == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id and name are required",
		})
	}

	plan := req.toModel()
	if err := h.adminSvc.CreatePlan(c.Context(), middleware.GetAdminID(c), plan); err != nil {
		if errors.Is(err, service.ErrPlanIDTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(plan)
}

func (h *AdminHandler) UpdatePlan(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	req.ID = c.Params("plan_id")

	plan := req.toModel()
	if err := h.adminSvc.UpdatePlan(c.Context(), middleware.GetAdminID(c), plan); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "plan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(plan)
}

// --- Affiliates ---

type CreateAffiliateRequest struct {
	Name           string  `json:"name"`
	Email          *string `json:"email"`
	PixKey         *string `json:"pix_key"`
	ReferralCode   string  `json:"referral_code"`
	CommissionRate float64 `json:"commission_rate"`
}

func (h *AdminHandler) ListAffiliates(c *fiber.Ctx) error {
	affiliates, err := h.affiliateSvc.ListAffiliates(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list affiliates",
		})
	}
	return c.JSON(fiber.Map{
		"affiliates": affiliates,
	})
}

func (h *AdminHandler) CreateAffiliate(c *fiber.Ctx) error {
	var req CreateAffiliateRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	affiliate, err := h.affiliateSvc.CreateAffiliate(c.Context(), req.Name, req.Email, req.PixKey, req.ReferralCode, req.CommissionRate)
	if err != nil {
		if errors.Is(err, service.ErrAffiliateCodeTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h.adminSvc.LogAction(c.Context(), middleware.GetAdminID(c), model.AdminActionCreateAffiliate, affiliate.ID.String(), nil)

	return c.Status(fiber.StatusCreated).JSON(affiliate)
}

func (h *AdminHandler) DeleteAffiliate(c *fiber.Ctx) error {
	affiliateID, err := uuid.Parse(c.Params("affiliate_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid affiliate id",
		})
	}

	if err := h.affiliateSvc.DeleteAffiliate(c.Context(), affiliateID); err != nil {
		if errors.Is(err, repository.ErrAffiliateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "affiliate not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h.adminSvc.LogAction(c.Context(), middleware.GetAdminID(c), model.AdminActionDeleteAffiliate, affiliateID.String(), nil)

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// --- Ledger ---

func (h *AdminHandler) GetAffiliateLedger(c *fiber.Ctx) error {
	affiliateID, err := uuid.Parse(c.Params("affiliate_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid affiliate id",
		})
	}

	ledger, err := h.ledgerSvc.GetLedger(c.Context(), affiliateID)
	if err != nil {
		if errors.Is(err, repository.ErrAffiliateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "affiliate not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(ledger)
}

func (h *AdminHandler) GetAffiliateCommissions(c *fiber.Ctx) error {
	affiliateID, err := uuid.Parse(c.Params("affiliate_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid affiliate id",
		})
	}

	commissions, err := h.ledgerSvc.GetCommissions(c.Context(), affiliateID)
	if err != nil {
		if errors.Is(err, repository.ErrAffiliateNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "affiliate not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"commissions": commissions,
	})
}

type CreatePayoutRequest struct {
	Amount float64 `json:"amount"`
	Notes  *string `json:"notes"`
}

func (h *AdminHandler) CreatePayout(c *fiber.Ctx) error {
	affiliateID, err := uuid.Parse(c.Params("affiliate_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid affiliate id",
		})
	}

	var req CreatePayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	payout, err := h.ledgerSvc.CreatePayout(c.Context(), affiliateID, req.Amount, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrAffiliateNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "affiliate not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	h.adminSvc.LogAction(c.Context(), middleware.GetAdminID(c), model.AdminActionCreatePayout, affiliateID.String(), map[string]interface{}{
		"payout_id": payout.ID.String(),
		"amount":    payout.Amount,
	})

	return c.Status(fiber.StatusCreated).JSON(payout)
}

// --- Feedback ---

type UpdateFeedbackStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) UpdateFeedbackStatus(c *fiber.Ctx) error {
	feedbackID, err := uuid.Parse(c.Params("feedback_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid feedback id",
		})
	}

	var req UpdateFeedbackStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status is required",
		})
	}

	if err := h.feedbackSvc.UpdateStatus(c.Context(), feedbackID, model.FeedbackStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFeedbackStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrFeedbackNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "feedback not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	h.adminSvc.LogAction(c.Context(), middleware.GetAdminID(c), model.AdminActionUpdateFeedback, feedbackID.String(), map[string]interface{}{
		"status": req.Status,
	})

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// --- Audit log ---

func (h *AdminHandler) GetActions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	actions, err := h.adminSvc.GetActions(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load actions",
		})
	}

	return c.JSON(fiber.Map{
		"actions": actions,
	})
}
