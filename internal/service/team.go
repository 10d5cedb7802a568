package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/config"
	"github.com/funnelhub/backend/internal/mailer"
	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var (
	ErrAlreadyInvited  = errors.New("this email is already invited to the project")
	ErrInviteMismatch  = errors.New("the invite was issued to a different email")
	ErrTeamLimit       = errors.New("team member limit reached for the current plan")
	ErrInvalidTeamRole = errors.New("role must be editor or viewer")
)

type TeamService struct {
	repo   *repository.Repository
	mailer *mailer.Mailer
	cfg    *config.Config
}

func NewTeamService(repo *repository.Repository, m *mailer.Mailer, cfg *config.Config) *TeamService {
	return &TeamService{repo: repo, mailer: m, cfg: cfg}
}

func (s *TeamService) ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]model.TeamMember, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		if _, err := s.repo.GetMembership(ctx, projectID, userID); err != nil {
			return nil, ErrAccessDenied
		}
	}
	return s.repo.GetTeamMembers(ctx, projectID)
}

// Invite creates a pending membership and mails the invite link. The mail
// is best-effort: a delivery failure leaves the invite usable.
func (s *TeamService) Invite(ctx context.Context, ownerID, projectID uuid.UUID, email string, role model.TeamRole) (*model.TeamMember, error) {
	if role != model.TeamRoleEditor && role != model.TeamRoleViewer {
		return nil, ErrInvalidTeamRole
	}

	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, ErrOwnerOnly
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetTeamMemberByEmail(ctx, projectID, email); err == nil {
		return nil, ErrAlreadyInvited
	} else if !errors.Is(err, repository.ErrInviteNotFound) {
		return nil, err
	}

	if err := s.checkTeamLimit(ctx, project); err != nil {
		return nil, err
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, err
	}

	member := &model.TeamMember{
		ProjectID:   projectID,
		Email:       email,
		Role:        role,
		Status:      model.InviteStatusPending,
		InviteToken: token,
	}
	if err := s.repo.CreateInvite(ctx, member); err != nil {
		return nil, err
	}

	link := s.cfg.App.BaseURL + "/invites/accept?token=" + token
	if err := s.mailer.SendInvite(email, project.Name, link); err != nil {
		log.Printf("WARNING: failed to send invite mail to %s: %v", email, err)
	}

	return member, nil
}

// AcceptInvite binds the pending invite to the accepting user. The token
// identifies the invite; the email on the account must match the one the
// invite was issued to.
func (s *TeamService) AcceptInvite(ctx context.Context, userID uuid.UUID, userEmail, token string) (*model.TeamMember, error) {
	member, err := s.repo.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(member.Email, userEmail) {
		return nil, ErrInviteMismatch
	}

	if err := s.repo.AcceptInvite(ctx, member.ID, userID); err != nil {
		return nil, err
	}

	member.Status = model.InviteStatusAccepted
	member.UserID = &userID
	return member, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, ownerID, projectID, memberID uuid.UUID) error {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != ownerID {
		return ErrOwnerOnly
	}
	return s.repo.DeleteTeamMember(ctx, memberID)
}

func (s *TeamService) checkTeamLimit(ctx context.Context, project *model.Project) error {
	profile, err := s.repo.GetProfile(ctx, project.OwnerID)
	if err != nil {
		return err
	}
	plan, err := s.repo.GetPlan(ctx, profile.Plan)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil
		}
		return err
	}
	if plan.MaxTeamMembers <= 0 {
		return nil
	}

	count, err := s.repo.CountTeamMembers(ctx, project.ID)
	if err != nil {
		return err
	}
	if count >= plan.MaxTeamMembers {
		return ErrTeamLimit
	}
	return nil
}

func generateInviteToken() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
