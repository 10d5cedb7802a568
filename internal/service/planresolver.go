package service

import (
	"context"
	"errors"
	"strings"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var ErrPlanNotResolved = errors.New("price id could not be resolved to a plan")

// legacyPriceMap covers price IDs sold before plans carried their own Stripe
// identifiers. Never extend this map: new prices belong on the plans table.
var legacyPriceMap = map[string]string{
	"price_1NQxTZGkPXlEquAtPROmensal":  model.PlanPro,
	"price_1NQxTZGkPXlEquAtPROanual":   model.PlanPro,
	"price_1M8kLRGkPXlEquAtpremium01":  model.PlanPremium,
	"price_1M8kLRGkPXlEquAtpremium12":  model.PlanPremium,
	"price_1LpYWAGkPXlEquAtlaunchdeal": model.PlanPro,
}

// PlanResolver maps a billing price identifier to an internal plan ID. It is
// the single resolver shared by the webhook and manual sync paths.
type PlanResolver struct {
	repo *repository.Repository
}

func NewPlanResolver(repo *repository.Repository) *PlanResolver {
	return &PlanResolver{repo: repo}
}

// Resolve tries, in order: the plans table, the legacy map, and a substring
// heuristic on the price ID. The table always wins when it has a match.
func (r *PlanResolver) Resolve(ctx context.Context, priceID string) (string, error) {
	if priceID == "" {
		return "", ErrPlanNotResolved
	}

	plan, err := r.repo.GetPlanByPriceID(ctx, priceID)
	if err == nil {
		return plan.ID, nil
	}
	if !errors.Is(err, repository.ErrPlanNotFound) {
		return "", err
	}

	if planID, ok := legacyPriceMap[priceID]; ok {
		return planID, nil
	}

	// Last-ditch heuristic for price IDs that predate any mapping.
	lower := strings.ToLower(priceID)
	switch {
	case strings.Contains(lower, "pro"):
		return model.PlanPro, nil
	case strings.Contains(lower, "premium"):
		return model.PlanPremium, nil
	}

	return "", ErrPlanNotResolved
}
