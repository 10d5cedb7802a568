package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

func (r *Repository) GetSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.GetContext(ctx, &sub, "SELECT * FROM subscriptions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *Repository) GetLatestSubscription(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	query := `
		SELECT * FROM subscriptions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &sub, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// UpsertSubscriptionAndPlan writes the subscription row and the profile's
// plan field in one transaction, so an event application is all-or-nothing.
func (r *Repository) UpsertSubscriptionAndPlan(ctx context.Context, sub *model.Subscription, plan string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, status, price_id, interval, current_period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			price_id = EXCLUDED.price_id,
			interval = EXCLUDED.interval,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()`,
		sub.ID, sub.UserID, sub.Status, sub.PriceID, sub.Interval, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE profiles SET plan = $2, updated_at = NOW() WHERE id = $1",
		sub.UserID, plan)
	if err != nil {
		return fmt.Errorf("failed to update profile plan: %w", err)
	}

	return tx.Commit()
}

// CancelSubscriptionAndPlan marks the subscription canceled and reverts the
// owner to the given fallback plan, in one transaction.
func (r *Repository) CancelSubscriptionAndPlan(ctx context.Context, subID string, fallbackPlan string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userID uuid.UUID
	err = tx.GetContext(ctx, &userID,
		"UPDATE subscriptions SET status = 'canceled', updated_at = NOW() WHERE id = $1 RETURNING user_id",
		subID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE profiles SET plan = $2, updated_at = NOW() WHERE id = $1",
		userID, fallbackPlan)
	if err != nil {
		return fmt.Errorf("failed to revert profile plan: %w", err)
	}

	return tx.Commit()
}

// GetEntitledSubscriptions returns every subscription that currently grants
// a plan, for the reconcile sweep.
func (r *Repository) GetEntitledSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	var subs []model.Subscription
	query := "SELECT * FROM subscriptions WHERE status IN ('active', 'trialing')"
	err := r.db.SelectContext(ctx, &subs, query)
	return subs, err
}

func (r *Repository) CountActiveSubscriptionsByPlan(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT p.plan, COUNT(*)
		FROM subscriptions s
		JOIN profiles p ON p.id = s.user_id
		WHERE s.status IN ('active', 'trialing')
		GROUP BY p.plan`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var plan string
		var count int
		if err := rows.Scan(&plan, &count); err != nil {
			return nil, err
		}
		counts[plan] = count
	}
	return counts, rows.Err()
}

// RecordBillingEvent registers a webhook delivery and reports whether the
// event was already fully processed. An event whose earlier handling failed
// has no processed_at stamp, so its redelivery is handled again.
func (r *Repository) RecordBillingEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	var processed bool
	err := r.db.GetContext(ctx, &processed, `
		INSERT INTO billing_events (id, type) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type
		RETURNING processed_at IS NOT NULL`,
		eventID, eventType)
	return processed, err
}

// MarkBillingEventProcessed stamps the event after successful handling.
func (r *Repository) MarkBillingEventProcessed(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE billing_events SET processed_at = NOW() WHERE id = $1", eventID)
	return err
}
