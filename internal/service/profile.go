package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

type ProfileService struct {
	repo *repository.Repository
}

func NewProfileService(repo *repository.Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

// GetOrCreateProfile returns the caller's profile, creating the row on
// first sight of their access token.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, userID uuid.UUID, email string) (*model.Profile, error) {
	return s.repo.UpsertProfile(ctx, userID, email)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *ProfileService) GetProfileWithSubscription(ctx context.Context, userID uuid.UUID) (*model.ProfileWithSubscription, error) {
	return s.repo.GetProfileWithSubscription(ctx, userID)
}
