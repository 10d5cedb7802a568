package service

import (
	"context"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

type PlanService struct {
	repo *repository.Repository
}

func NewPlanService(repo *repository.Repository) *PlanService {
	return &PlanService{repo: repo}
}

func (s *PlanService) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

func (s *PlanService) GetActivePlans(ctx context.Context) ([]model.Plan, error) {
	return s.repo.GetActivePlans(ctx)
}

func (s *PlanService) GetAllPlans(ctx context.Context) ([]model.Plan, error) {
	return s.repo.GetAllPlans(ctx)
}
