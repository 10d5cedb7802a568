package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

var ErrProjectNotFound = errors.New("project not found")

func (r *Repository) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.GetContext(ctx, &project, "SELECT * FROM projects WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetAccessibleProjects lists projects the user owns plus projects shared
// with them through an accepted team membership.
func (r *Repository) GetAccessibleProjects(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	query := `
		SELECT DISTINCT p.* FROM projects p
		LEFT JOIN team_members tm ON tm.project_id = p.id AND tm.user_id = $1 AND tm.status = 'accepted'
		WHERE p.owner_id = $1 OR tm.id IS NOT NULL
		ORDER BY p.updated_at DESC`
	err := r.db.SelectContext(ctx, &projects, query, userID)
	return projects, err
}

func (r *Repository) GetTemplates(ctx context.Context) ([]model.Project, error) {
	var templates []model.Project
	query := "SELECT * FROM projects WHERE is_template = true ORDER BY updated_at DESC"
	err := r.db.SelectContext(ctx, &templates, query)
	return templates, err
}

func (r *Repository) CreateProject(ctx context.Context, project *model.Project) error {
	query := `
		INSERT INTO projects (owner_id, name, data, is_template)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		project.OwnerID,
		project.Name,
		project.Data,
		project.IsTemplate,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *Repository) UpdateProject(ctx context.Context, project *model.Project) error {
	query := `
		UPDATE projects SET
			name = $2,
			data = $3,
			is_template = $4,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Data,
		project.IsTemplate,
	)
	return err
}

func (r *Repository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	return err
}

func (r *Repository) CountProjectsByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM projects WHERE owner_id = $1 AND is_template = false", ownerID)
	return count, err
}

func (r *Repository) CountProjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM projects")
	return count, err
}
