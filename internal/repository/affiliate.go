package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

var ErrAffiliateNotFound = errors.New("affiliate not found")

func (r *Repository) GetAffiliate(ctx context.Context, id uuid.UUID) (*model.Affiliate, error) {
	var affiliate model.Affiliate
	err := r.db.GetContext(ctx, &affiliate, "SELECT * FROM affiliates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}
	return &affiliate, nil
}

func (r *Repository) GetAffiliateByCode(ctx context.Context, code string) (*model.Affiliate, error) {
	var affiliate model.Affiliate
	err := r.db.GetContext(ctx, &affiliate, "SELECT * FROM affiliates WHERE referral_code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}
	return &affiliate, nil
}

func (r *Repository) ListAffiliates(ctx context.Context) ([]model.Affiliate, error) {
	var affiliates []model.Affiliate
	err := r.db.SelectContext(ctx, &affiliates, "SELECT * FROM affiliates ORDER BY created_at DESC")
	return affiliates, err
}

func (r *Repository) CreateAffiliate(ctx context.Context, affiliate *model.Affiliate) error {
	query := `
		INSERT INTO affiliates (name, email, referral_code, commission_rate, pix_key, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		affiliate.Name,
		affiliate.Email,
		affiliate.ReferralCode,
		affiliate.CommissionRate,
		affiliate.PixKey,
		affiliate.Status,
	).Scan(&affiliate.ID, &affiliate.CreatedAt)
}

func (r *Repository) DeleteAffiliate(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM affiliates WHERE id = $1", id)
	return err
}

func (r *Repository) CountAffiliates(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM affiliates")
	return count, err
}
