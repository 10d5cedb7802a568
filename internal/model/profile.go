package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Profile struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	FullName         *string   `json:"full_name,omitempty" db:"full_name"`
	Plan             string    `json:"plan" db:"plan"`
	Role             Role      `json:"role" db:"role"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty" db:"stripe_customer_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

type ProfileWithSubscription struct {
	Profile
	Subscription *Subscription `json:"subscription,omitempty"`
}
