package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectColumns = []string{
	"id", "owner_id", "name", "data", "is_template", "created_at", "updated_at",
}

func expectProfile(mock sqlmock.Sqlmock, userID uuid.UUID, plan string) {
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM profiles WHERE id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(userID.String(), "user@test.com", nil, plan, "user", nil, now, now))
}

func expectPlan(mock sqlmock.Sqlmock, id string, maxProjects, maxTeamMembers int) {
	mock.ExpectQuery("SELECT \\* FROM plans WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(id, id, "", 0.0, 0.0, maxProjects, maxTeamMembers, nil, nil, nil, true, 0, time.Now()))
}

func TestCreateProjectEnforcesPlanLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewProjectService(repo)

	userID := uuid.New()

	expectProfile(mock, userID, "free")
	expectPlan(mock, "free", 3, 1)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM projects WHERE owner_id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	_, err := svc.CreateProject(context.Background(), userID, "Quarto funil", nil)
	assert.ErrorIs(t, err, ErrProjectLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProjectUnlimitedPlan(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewProjectService(repo)

	userID := uuid.New()
	now := time.Now()

	expectProfile(mock, userID, "pro")
	// max_projects 0 means unlimited.
	expectPlan(mock, "pro", 0, 5)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM projects WHERE owner_id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	mock.ExpectQuery("INSERT INTO projects").
		WithArgs(userID, "Lançamento", []byte(`{"steps":[]}`), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), now, now))

	project, err := svc.CreateProject(context.Background(), userID, "Lançamento", nil)
	require.NoError(t, err)
	assert.Equal(t, "Lançamento", project.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProjectUnknownPlanFailsOpen(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewProjectService(repo)

	userID := uuid.New()
	now := time.Now()

	expectProfile(mock, userID, "legacy_vip")
	mock.ExpectQuery("SELECT \\* FROM plans WHERE id").
		WithArgs("legacy_vip").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("INSERT INTO projects").
		WithArgs(userID, "Funil", []byte(`{"steps":[]}`), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), now, now))

	_, err := svc.CreateProject(context.Background(), userID, "Funil", nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProjectOwnerOnly(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewProjectService(repo)

	ownerID := uuid.New()
	otherID := uuid.New()
	projectID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM projects WHERE id").
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(projectID.String(), ownerID.String(), "Funil", []byte(`{}`), false, now, now))

	err := svc.DeleteProject(context.Background(), otherID, projectID)
	assert.ErrorIs(t, err, ErrOwnerOnly)
}

func TestUpdateProjectViewerIsReadOnly(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewProjectService(repo)

	ownerID := uuid.New()
	viewerID := uuid.New()
	projectID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM projects WHERE id").
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(projectID.String(), ownerID.String(), "Funil", []byte(`{}`), false, now, now))

	mock.ExpectQuery("SELECT \\* FROM team_members WHERE project_id = \\$1 AND user_id").
		WithArgs(projectID, viewerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "user_id", "email", "role", "status", "invite_token", "accepted_at", "created_at"}).
			AddRow(uuid.NewString(), projectID.String(), viewerID.String(), "viewer@test.com", "viewer", "accepted", "tok", now, now))

	name := "Novo nome"
	_, err := svc.UpdateProject(context.Background(), viewerID, projectID, &name, nil)
	assert.ErrorIs(t, err, ErrReadOnlyAccess)
}

func TestDuplicateTemplateSkipsAccessCheck(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewProjectService(repo)

	userID := uuid.New()
	templateID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM projects WHERE id").
		WithArgs(templateID).
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(templateID.String(), uuid.NewString(), "Webinar", []byte(`{"steps":[1]}`), true, now, now))

	expectProfile(mock, userID, "pro")
	expectPlan(mock, "pro", 0, 5)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM projects WHERE owner_id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery("INSERT INTO projects").
		WithArgs(userID, "Webinar (cópia)", []byte(`{"steps":[1]}`), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), now, now))

	clone, err := svc.DuplicateProject(context.Background(), userID, templateID)
	require.NoError(t, err)
	assert.Equal(t, "Webinar (cópia)", clone.Name)
	assert.Equal(t, userID, clone.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
