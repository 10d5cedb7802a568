package model

import "time"

// PlanFree is the tier every profile falls back to when no active
// subscription exists.
const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

type Plan struct {
	ID                   string    `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Description          string    `json:"description" db:"description"`
	PriceMonthly         float64   `json:"price_monthly" db:"price_monthly"`
	PriceYearly          float64   `json:"price_yearly" db:"price_yearly"`
	MaxProjects          int       `json:"max_projects" db:"max_projects"`
	MaxTeamMembers       int       `json:"max_team_members" db:"max_team_members"`
	StripeProductID      *string   `json:"stripe_product_id,omitempty" db:"stripe_product_id"`
	StripePriceIDMonthly *string   `json:"stripe_price_id_monthly,omitempty" db:"stripe_price_id_monthly"`
	StripePriceIDYearly  *string   `json:"stripe_price_id_yearly,omitempty" db:"stripe_price_id_yearly"`
	IsActive             bool      `json:"is_active" db:"is_active"`
	SortOrder            int       `json:"sort_order" db:"sort_order"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// Unlimited limits are stored as 0.
func (p *Plan) AllowsProjects(count int) bool {
	return p.MaxProjects <= 0 || count < p.MaxProjects
}
