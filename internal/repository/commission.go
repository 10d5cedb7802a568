package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

func (r *Repository) CreateCommission(ctx context.Context, commission *model.Commission) error {
	query := `
		INSERT INTO commissions (affiliate_id, amount, status, sale_reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		commission.AffiliateID,
		commission.Amount,
		commission.Status,
		commission.SaleReference,
	).Scan(&commission.ID, &commission.CreatedAt)
}

func (r *Repository) GetCommissions(ctx context.Context, affiliateID uuid.UUID) ([]model.Commission, error) {
	var commissions []model.Commission
	query := "SELECT * FROM commissions WHERE affiliate_id = $1 ORDER BY created_at DESC"
	err := r.db.SelectContext(ctx, &commissions, query, affiliateID)
	return commissions, err
}

// GetPaidCommissions returns only rows that count toward the earned total.
func (r *Repository) GetPaidCommissions(ctx context.Context, affiliateID uuid.UUID) ([]model.Commission, error) {
	var commissions []model.Commission
	query := "SELECT * FROM commissions WHERE affiliate_id = $1 AND status = 'PAID' ORDER BY created_at DESC"
	err := r.db.SelectContext(ctx, &commissions, query, affiliateID)
	return commissions, err
}

func (r *Repository) SumPaidCommissions(ctx context.Context, affiliateID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE affiliate_id = $1 AND status = 'PAID'",
		affiliateID)
	return total, err
}

func (r *Repository) SumAllPaidCommissions(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE status = 'PAID'")
	return total, err
}
