package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

var ErrInviteNotFound = errors.New("invite not found")

func (r *Repository) GetTeamMembers(ctx context.Context, projectID uuid.UUID) ([]model.TeamMember, error) {
	var members []model.TeamMember
	query := "SELECT * FROM team_members WHERE project_id = $1 ORDER BY created_at ASC"
	err := r.db.SelectContext(ctx, &members, query, projectID)
	return members, err
}

func (r *Repository) GetTeamMemberByEmail(ctx context.Context, projectID uuid.UUID, email string) (*model.TeamMember, error) {
	var member model.TeamMember
	query := "SELECT * FROM team_members WHERE project_id = $1 AND lower(email) = lower($2)"
	err := r.db.GetContext(ctx, &member, query, projectID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &member, nil
}

// GetMembership returns the accepted membership of a user on a project.
func (r *Repository) GetMembership(ctx context.Context, projectID, userID uuid.UUID) (*model.TeamMember, error) {
	var member model.TeamMember
	query := "SELECT * FROM team_members WHERE project_id = $1 AND user_id = $2 AND status = 'accepted'"
	err := r.db.GetContext(ctx, &member, query, projectID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *Repository) GetInviteByToken(ctx context.Context, token string) (*model.TeamMember, error) {
	var member model.TeamMember
	query := "SELECT * FROM team_members WHERE invite_token = $1 AND status = 'pending'"
	err := r.db.GetContext(ctx, &member, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *Repository) CreateInvite(ctx context.Context, member *model.TeamMember) error {
	query := `
		INSERT INTO team_members (project_id, email, role, status, invite_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		member.ProjectID,
		member.Email,
		member.Role,
		member.Status,
		member.InviteToken,
	).Scan(&member.ID, &member.CreatedAt)
}

func (r *Repository) AcceptInvite(ctx context.Context, id, userID uuid.UUID) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE team_members SET status = 'accepted', user_id = $2, accepted_at = $3 WHERE id = $1`,
		id, userID, now)
	return err
}

func (r *Repository) DeleteTeamMember(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM team_members WHERE id = $1", id)
	return err
}

func (r *Repository) CountTeamMembers(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM team_members WHERE project_id = $1", projectID)
	return count, err
}
