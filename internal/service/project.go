package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var (
	ErrAccessDenied   = errors.New("you do not have access to this project")
	ErrReadOnlyAccess = errors.New("your role on this project is read-only")
	ErrOwnerOnly      = errors.New("only the project owner can do this")
	ErrProjectLimit   = errors.New("project limit reached for the current plan")
)

type ProjectService struct {
	repo *repository.Repository
}

func NewProjectService(repo *repository.Repository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	return s.repo.GetAccessibleProjects(ctx, userID)
}

func (s *ProjectService) ListTemplates(ctx context.Context) ([]model.Project, error) {
	return s.repo.GetTemplates(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.roleOn(ctx, userID, project); err != nil {
		return nil, err
	}
	return project, nil
}

// CreateProject creates a funnel, enforcing the owner's plan project limit.
func (s *ProjectService) CreateProject(ctx context.Context, userID uuid.UUID, name string, data json.RawMessage) (*model.Project, error) {
	if err := s.checkProjectLimit(ctx, userID); err != nil {
		return nil, err
	}

	if data == nil {
		data = json.RawMessage(`{"steps":[]}`)
	}

	project := &model.Project{
		OwnerID: userID,
		Name:    name,
		Data:    data,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, userID, projectID uuid.UUID, name *string, data json.RawMessage) (*model.Project, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	role, err := s.roleOn(ctx, userID, project)
	if err != nil {
		return nil, err
	}
	if !role.CanEdit() {
		return nil, ErrReadOnlyAccess
	}

	if name != nil {
		project.Name = *name
	}
	if data != nil {
		project.Data = data
	}

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != userID {
		return ErrOwnerOnly
	}
	return s.repo.DeleteProject(ctx, projectID)
}

// DuplicateProject clones a project or template into the caller's account.
func (s *ProjectService) DuplicateProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	source, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Templates are cloneable by anyone; private projects need access.
	if !source.IsTemplate {
		if _, err := s.roleOn(ctx, userID, source); err != nil {
			return nil, err
		}
	}

	if err := s.checkProjectLimit(ctx, userID); err != nil {
		return nil, err
	}

	clone := &model.Project{
		OwnerID: userID,
		Name:    source.Name + " (cópia)",
		Data:    source.Data,
	}
	if err := s.repo.CreateProject(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// roleOn returns the caller's effective role: owners edit, accepted team
// members get their invited role.
func (s *ProjectService) roleOn(ctx context.Context, userID uuid.UUID, project *model.Project) (model.TeamRole, error) {
	if project.OwnerID == userID {
		return model.TeamRoleEditor, nil
	}

	member, err := s.repo.GetMembership(ctx, project.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return "", ErrAccessDenied
		}
		return "", err
	}
	return member.Role, nil
}

func (s *ProjectService) checkProjectLimit(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	plan, err := s.repo.GetPlan(ctx, profile.Plan)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			// Unknown tier on the profile: fail open rather than lock the
			// user out of their editor.
			return nil
		}
		return err
	}

	count, err := s.repo.CountProjectsByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if !plan.AllowsProjects(count) {
		return ErrProjectLimit
	}
	return nil
}
