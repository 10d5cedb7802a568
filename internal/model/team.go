package model

import (
	"time"

	"github.com/google/uuid"
)

type TeamRole string

const (
	TeamRoleEditor TeamRole = "editor"
	TeamRoleViewer TeamRole = "viewer"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
)

type TeamMember struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	ProjectID   uuid.UUID    `json:"project_id" db:"project_id"`
	Email       string       `json:"email" db:"email"`
	UserID      *uuid.UUID   `json:"user_id,omitempty" db:"user_id"`
	Role        TeamRole     `json:"role" db:"role"`
	Status      InviteStatus `json:"status" db:"status"`
	InviteToken string       `json:"-" db:"invite_token"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty" db:"accepted_at"`
}

func (r TeamRole) CanEdit() bool {
	return r == TeamRoleEditor
}
