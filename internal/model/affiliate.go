package model

import (
	"time"

	"github.com/google/uuid"
)

type AffiliateStatus string

const (
	AffiliateStatusActive   AffiliateStatus = "active"
	AffiliateStatusInactive AffiliateStatus = "inactive"
)

type Affiliate struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Email          *string         `json:"email,omitempty" db:"email"`
	ReferralCode   string          `json:"referral_code" db:"referral_code"`
	CommissionRate float64         `json:"commission_rate" db:"commission_rate"`
	PixKey         *string         `json:"pix_key,omitempty" db:"pix_key"`
	Status         AffiliateStatus `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "PENDING"
	CommissionStatusPaid    CommissionStatus = "PAID"
)

// Commission is one attributed sale. Rows are created by the billing
// pipeline; the PENDING -> PAID transition happens outside this service.
type Commission struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	AffiliateID   uuid.UUID        `json:"affiliate_id" db:"affiliate_id"`
	Amount        float64          `json:"amount" db:"amount"`
	Status        CommissionStatus `json:"status" db:"status"`
	SaleReference *string          `json:"sale_reference,omitempty" db:"sale_reference"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// Payout is a manual payment recorded against an affiliate's earned
// commissions. Never updated or reversed.
type Payout struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AffiliateID uuid.UUID `json:"affiliate_id" db:"affiliate_id"`
	Amount      float64   `json:"amount" db:"amount"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type LedgerEntryKind string

const (
	LedgerEntryCommission LedgerEntryKind = "commission"
	LedgerEntryPayout     LedgerEntryKind = "payout"
)

// LedgerEntry is a derived statement line, never persisted. Amount is
// signed: commissions positive, payouts negative.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	Kind        LedgerEntryKind `json:"kind"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
}

// LedgerView is the derived view the affiliate dashboard consumes.
type LedgerView struct {
	Affiliate       *Affiliate    `json:"affiliate"`
	TotalCommission float64       `json:"total_commission"`
	TotalPayouts    float64       `json:"total_payouts"`
	Balance         float64       `json:"balance"`
	Statement       []LedgerEntry `json:"statement"`
}
