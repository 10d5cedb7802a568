package model

import (
	"time"

	"github.com/google/uuid"
)

type AdminAction string

const (
	AdminActionSetPlan         AdminAction = "set_plan"
	AdminActionCreatePlan      AdminAction = "create_plan"
	AdminActionUpdatePlan      AdminAction = "update_plan"
	AdminActionCreateAffiliate AdminAction = "create_affiliate"
	AdminActionDeleteAffiliate AdminAction = "delete_affiliate"
	AdminActionCreatePayout    AdminAction = "create_payout"
	AdminActionUpdateFeedback  AdminAction = "update_feedback"
)

type AdminActionLog struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	AdminID   uuid.UUID   `json:"admin_id" db:"admin_id"`
	Action    AdminAction `json:"action" db:"action"`
	TargetID  *string     `json:"target_id,omitempty" db:"target_id"`
	Details   *string     `json:"details,omitempty" db:"details"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

type AdminStats struct {
	TotalUsers          int            `json:"total_users"`
	TotalProjects       int            `json:"total_projects"`
	TotalAffiliates     int            `json:"total_affiliates"`
	PaidCommissionTotal float64        `json:"paid_commission_total"`
	ActiveSubsByPlan    map[string]int `json:"active_subs_by_plan"`
}
