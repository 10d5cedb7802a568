package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

func (r *Repository) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM profiles")
	return count, err
}

func (r *Repository) LogAdminAction(ctx context.Context, adminID uuid.UUID, action model.AdminAction, targetID *string, details map[string]interface{}) error {
	var detailsJSON *string
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		s := string(raw)
		detailsJSON = &s
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_actions (admin_id, action, target_id, details)
		VALUES ($1, $2, $3, $4)`,
		adminID, action, targetID, detailsJSON)
	return err
}

func (r *Repository) GetAdminActions(ctx context.Context, limit, offset int) ([]model.AdminActionLog, error) {
	var actions []model.AdminActionLog
	err := r.db.SelectContext(ctx, &actions, `
		SELECT * FROM admin_actions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	return actions, err
}
