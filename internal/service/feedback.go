package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var (
	ErrEmptyTitle            = errors.New("title is required")
	ErrInvalidFeedbackStatus = errors.New("invalid feedback status")
)

type FeedbackService struct {
	repo *repository.Repository
}

func NewFeedbackService(repo *repository.Repository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) ListFeedback(ctx context.Context, viewerID uuid.UUID) ([]model.FeedbackWithVotes, error) {
	return s.repo.ListFeedback(ctx, viewerID)
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, userID uuid.UUID, title, description, category string) (*model.Feedback, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if category == "" {
		category = "general"
	}

	feedback := &model.Feedback{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Category:    category,
		Status:      model.FeedbackStatusOpen,
	}
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// ToggleVote flips the caller's vote and reports whether it now exists.
func (s *FeedbackService) ToggleVote(ctx context.Context, feedbackID, userID uuid.UUID) (bool, error) {
	if _, err := s.repo.GetFeedback(ctx, feedbackID); err != nil {
		return false, err
	}
	return s.repo.ToggleFeedbackVote(ctx, feedbackID, userID)
}

func (s *FeedbackService) UpdateStatus(ctx context.Context, feedbackID uuid.UUID, status model.FeedbackStatus) error {
	switch status {
	case model.FeedbackStatusOpen, model.FeedbackStatusPlanned, model.FeedbackStatusInProgress, model.FeedbackStatusDone:
	default:
		return ErrInvalidFeedbackStatus
	}

	if _, err := s.repo.GetFeedback(ctx, feedbackID); err != nil {
		return err
	}
	return s.repo.UpdateFeedbackStatus(ctx, feedbackID, status)
}
