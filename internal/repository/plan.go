package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/funnelhub/backend/internal/model"
)

var ErrPlanNotFound = errors.New("plan not found")

func (r *Repository) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.GetContext(ctx, &plan, "SELECT * FROM plans WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetPlanByPriceID matches either the monthly or the yearly billing price
// identifier.
func (r *Repository) GetPlanByPriceID(ctx context.Context, priceID string) (*model.Plan, error) {
	var plan model.Plan
	query := "SELECT * FROM plans WHERE stripe_price_id_monthly = $1 OR stripe_price_id_yearly = $1"
	err := r.db.GetContext(ctx, &plan, query, priceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *Repository) GetActivePlans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	query := "SELECT * FROM plans WHERE is_active = true ORDER BY sort_order ASC"
	err := r.db.SelectContext(ctx, &plans, query)
	return plans, err
}

func (r *Repository) GetAllPlans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	query := "SELECT * FROM plans ORDER BY sort_order ASC"
	err := r.db.SelectContext(ctx, &plans, query)
	return plans, err
}

func (r *Repository) CreatePlan(ctx context.Context, plan *model.Plan) error {
	query := `
		INSERT INTO plans (id, name, description, price_monthly, price_yearly, max_projects, max_team_members,
			stripe_product_id, stripe_price_id_monthly, stripe_price_id_yearly, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.PriceMonthly,
		plan.PriceYearly,
		plan.MaxProjects,
		plan.MaxTeamMembers,
		plan.StripeProductID,
		plan.StripePriceIDMonthly,
		plan.StripePriceIDYearly,
		plan.IsActive,
		plan.SortOrder,
	).Scan(&plan.CreatedAt)
}

func (r *Repository) UpdatePlan(ctx context.Context, plan *model.Plan) error {
	query := `
		UPDATE plans SET
			name = $2,
			description = $3,
			price_monthly = $4,
			price_yearly = $5,
			max_projects = $6,
			max_team_members = $7,
			stripe_product_id = $8,
			stripe_price_id_monthly = $9,
			stripe_price_id_yearly = $10,
			is_active = $11,
			sort_order = $12
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.PriceMonthly,
		plan.PriceYearly,
		plan.MaxProjects,
		plan.MaxTeamMembers,
		plan.StripeProductID,
		plan.StripePriceIDMonthly,
		plan.StripePriceIDYearly,
		plan.IsActive,
		plan.SortOrder,
	)
	return err
}

func (r *Repository) DeletePlan(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM plans WHERE id = $1", id)
	return err
}
