package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

// ListFeedback returns entries with vote counts and whether the viewer has
// voted on each.
func (r *Repository) ListFeedback(ctx context.Context, viewerID uuid.UUID) ([]model.FeedbackWithVotes, error) {
	var entries []model.FeedbackWithVotes
	query := `
		SELECT f.*,
			COUNT(v.user_id) AS votes,
			BOOL_OR(v.user_id = $1) IS TRUE AS voted
		FROM feedback f
		LEFT JOIN feedback_votes v ON v.feedback_id = f.id
		GROUP BY f.id
		ORDER BY votes DESC, f.created_at DESC`
	err := r.db.SelectContext(ctx, &entries, query, viewerID)
	return entries, err
}

func (r *Repository) GetFeedback(ctx context.Context, id uuid.UUID) (*model.Feedback, error) {
	var feedback model.Feedback
	err := r.db.GetContext(ctx, &feedback, "SELECT * FROM feedback WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

func (r *Repository) CreateFeedback(ctx context.Context, feedback *model.Feedback) error {
	query := `
		INSERT INTO feedback (user_id, title, description, category, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		feedback.UserID,
		feedback.Title,
		feedback.Description,
		feedback.Category,
		feedback.Status,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

func (r *Repository) UpdateFeedbackStatus(ctx context.Context, id uuid.UUID, status model.FeedbackStatus) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE feedback SET status = $2 WHERE id = $1", id, status)
	return err
}

// ToggleFeedbackVote adds the user's vote, or removes it when already
// present. Returns true when the vote now exists.
func (r *Repository) ToggleFeedbackVote(ctx context.Context, feedbackID, userID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM feedback_votes WHERE feedback_id = $1 AND user_id = $2",
		feedbackID, userID)
	if err != nil {
		return false, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if deleted > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO feedback_votes (feedback_id, user_id) VALUES ($1, $2)",
		feedbackID, userID)
	if err != nil {
		return false, err
	}
	return true, nil
}
