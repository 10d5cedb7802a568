package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription mirrors the billing processor's record of a recurring
// payment. The row ID is the processor's subscription ID, so upserts from
// duplicate event deliveries converge on the same row.
type Subscription struct {
	ID               string             `json:"id" db:"id"`
	UserID           uuid.UUID          `json:"user_id" db:"user_id"`
	Status           SubscriptionStatus `json:"status" db:"status"`
	PriceID          string             `json:"price_id" db:"price_id"`
	Interval         string             `json:"interval" db:"interval"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty" db:"current_period_end"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" db:"updated_at"`
}

// Entitled reports whether the subscription grants its plan.
func (s *Subscription) Entitled() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
