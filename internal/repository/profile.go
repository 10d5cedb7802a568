package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE lower(email) = lower($1)", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) GetProfileByStripeCustomerID(ctx context.Context, customerID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE stripe_customer_id = $1", customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile creates the profile row on first sight of an access token.
func (r *Repository) UpsertProfile(ctx context.Context, id uuid.UUID, email string) (*model.Profile, error) {
	var profile model.Profile
	query := `
		INSERT INTO profiles (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING *`
	err := r.db.QueryRowxContext(ctx, query, id, email).StructScan(&profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) UpdateProfilePlan(ctx context.Context, id uuid.UUID, plan string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET plan = $2, updated_at = NOW() WHERE id = $1",
		id, plan,
	)
	return err
}

func (r *Repository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE profiles SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1",
		id, customerID,
	)
	return err
}

func (r *Repository) ListProfiles(ctx context.Context, limit, offset int, search string) ([]model.Profile, int, error) {
	var profiles []model.Profile
	var total int

	if search != "" {
		pattern := "%" + search + "%"
		err := r.db.GetContext(ctx, &total,
			"SELECT COUNT(*) FROM profiles WHERE email ILIKE $1 OR full_name ILIKE $1", pattern)
		if err != nil {
			return nil, 0, err
		}
		err = r.db.SelectContext(ctx, &profiles, `
			SELECT * FROM profiles
			WHERE email ILIKE $1 OR full_name ILIKE $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
			pattern, limit, offset)
		return profiles, total, err
	}

	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM profiles"); err != nil {
		return nil, 0, err
	}
	err := r.db.SelectContext(ctx, &profiles,
		"SELECT * FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	return profiles, total, err
}

func (r *Repository) GetProfileWithSubscription(ctx context.Context, id uuid.UUID) (*model.ProfileWithSubscription, error) {
	profile, err := r.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &model.ProfileWithSubscription{Profile: *profile}

	sub, err := r.GetLatestSubscription(ctx, id)
	if err == nil {
		result.Subscription = sub
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	return result, nil
}

func (r *Repository) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	var role model.Role
	err := r.db.GetContext(ctx, &role, "SELECT role FROM profiles WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return role == model.RoleAdmin, nil
}
