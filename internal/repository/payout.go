package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

func (r *Repository) CreatePayout(ctx context.Context, payout *model.Payout) error {
	query := `
		INSERT INTO payouts (affiliate_id, amount, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		payout.AffiliateID,
		payout.Amount,
		payout.Notes,
	).Scan(&payout.ID, &payout.CreatedAt)
}

func (r *Repository) GetPayouts(ctx context.Context, affiliateID uuid.UUID) ([]model.Payout, error) {
	var payouts []model.Payout
	query := "SELECT * FROM payouts WHERE affiliate_id = $1 ORDER BY created_at DESC"
	err := r.db.SelectContext(ctx, &payouts, query, affiliateID)
	return payouts, err
}

func (r *Repository) SumPayouts(ctx context.Context, affiliateID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE affiliate_id = $1",
		affiliateID)
	return total, err
}
