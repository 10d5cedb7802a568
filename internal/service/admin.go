package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/billing"
	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var (
	ErrNotAdmin    = errors.New("user is not an administrator")
	ErrUnknownPlan = errors.New("unknown plan")
	ErrPlanIDTaken = errors.New("a plan with this id already exists")
)

type AdminService struct {
	repo          *repository.Repository
	billingClient *billing.Client
}

func NewAdminService(repo *repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// SetBillingClient enables best-effort plan sync to Stripe. Without it plan
// changes stay local only.
func (s *AdminService) SetBillingClient(client *billing.Client) {
	s.billingClient = client
}

// IsAdmin checks if user has the admin role
func (s *AdminService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}

func (s *AdminService) GetStats(ctx context.Context) (*model.AdminStats, error) {
	stats := &model.AdminStats{}

	var err error
	if stats.TotalUsers, err = s.repo.CountProfiles(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProjects, err = s.repo.CountProjects(ctx); err != nil {
		return nil, err
	}
	if stats.TotalAffiliates, err = s.repo.CountAffiliates(ctx); err != nil {
		return nil, err
	}
	if stats.PaidCommissionTotal, err = s.repo.SumAllPaidCommissions(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveSubsByPlan, err = s.repo.CountActiveSubscriptionsByPlan(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

// --- User management ---

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int, search string) ([]model.Profile, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.repo.ListProfiles(ctx, limit, offset, search)
}

func (s *AdminService) GetUser(ctx context.Context, userID uuid.UUID) (*model.ProfileWithSubscription, error) {
	return s.repo.GetProfileWithSubscription(ctx, userID)
}

// SetUserPlan overrides a user's tier manually, bypassing billing.
func (s *AdminService) SetUserPlan(ctx context.Context, adminID, userID uuid.UUID, plan string) error {
	if _, err := s.repo.GetPlan(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return ErrUnknownPlan
		}
		return err
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateProfilePlan(ctx, userID, plan); err != nil {
		return err
	}

	target := userID.String()
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionSetPlan, &target, map[string]interface{}{
		"old_plan": profile.Plan,
		"new_plan": plan,
	})

	return nil
}

// --- Plan management ---

func (s *AdminService) ListPlans(ctx context.Context) ([]model.Plan, error) {
	return s.repo.GetAllPlans(ctx)
}

// CreatePlan writes the plan locally and then pushes it to Stripe
// best-effort. The database row is authoritative: a Stripe failure is
// logged, not returned.
func (s *AdminService) CreatePlan(ctx context.Context, adminID uuid.UUID, plan *model.Plan) error {
	if _, err := s.repo.GetPlan(ctx, plan.ID); err == nil {
		return ErrPlanIDTaken
	} else if !errors.Is(err, repository.ErrPlanNotFound) {
		return err
	}

	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return err
	}

	s.pushPlanToStripe(ctx, plan)

	target := plan.ID
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionCreatePlan, &target, nil)
	return nil
}

func (s *AdminService) UpdatePlan(ctx context.Context, adminID uuid.UUID, plan *model.Plan) error {
	if _, err := s.repo.GetPlan(ctx, plan.ID); err != nil {
		return err
	}

	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return err
	}

	s.pushPlanToStripe(ctx, plan)

	target := plan.ID
	_ = s.repo.LogAdminAction(ctx, adminID, model.AdminActionUpdatePlan, &target, nil)
	return nil
}

func (s *AdminService) pushPlanToStripe(ctx context.Context, plan *model.Plan) {
	if s.billingClient == nil {
		return
	}
	if err := s.billingClient.PushPlan(plan); err != nil {
		log.Printf("WARNING: failed to sync plan %s to Stripe: %v", plan.ID, err)
		return
	}
	// PushPlan may have minted product/price IDs; persist them.
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		log.Printf("WARNING: failed to store Stripe IDs for plan %s: %v", plan.ID, err)
	}
}

// --- Audit ---

func (s *AdminService) GetActions(ctx context.Context, limit, offset int) ([]model.AdminActionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetAdminActions(ctx, limit, offset)
}

func (s *AdminService) LogAction(ctx context.Context, adminID uuid.UUID, action model.AdminAction, targetID string, details map[string]interface{}) {
	var target *string
	if targetID != "" {
		target = &targetID
	}
	if err := s.repo.LogAdminAction(ctx, adminID, action, target, details); err != nil {
		log.Printf("WARNING: failed to log admin action %s: %v", action, err)
	}
}
