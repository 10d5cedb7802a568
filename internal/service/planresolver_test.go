package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

func newMockRepo(t *testing.T) (*repository.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repository.NewWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

var planColumns = []string{
	"id", "name", "description", "price_monthly", "price_yearly",
	"max_projects", "max_team_members", "stripe_product_id",
	"stripe_price_id_monthly", "stripe_price_id_yearly",
	"is_active", "sort_order", "created_at",
}

func planRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows(planColumns).
		AddRow(id, id, "", 97.0, 970.0, 0, 5, nil, "price_m_"+id, "price_y_"+id, true, 1, time.Now())
}

func TestResolvePrefersPlansTable(t *testing.T) {
	repo, mock := newMockRepo(t)
	resolver := NewPlanResolver(repo)

	// Price ID contains "pro", but the table says premium; the table wins.
	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_prolaunch2024").
		WillReturnRows(planRow(model.PlanPremium))

	plan, err := resolver.Resolve(context.Background(), "price_prolaunch2024")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPremium, plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveLegacyPriceMap(t *testing.T) {
	repo, mock := newMockRepo(t)
	resolver := NewPlanResolver(repo)

	// "launchdeal" matches neither substring, only the legacy map knows it.
	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_1LpYWAGkPXlEquAtlaunchdeal").
		WillReturnError(sql.ErrNoRows)

	plan, err := resolver.Resolve(context.Background(), "price_1LpYWAGkPXlEquAtlaunchdeal")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, plan)
}

func TestResolveSubstringHeuristic(t *testing.T) {
	tests := []struct {
		priceID string
		want    string
	}{
		{"price_PROPLAN2022", model.PlanPro},
		{"price_premium_2022", model.PlanPremium},
		// "pro" is checked before "premium" when both match.
		{"price_pro_premium_bundle", model.PlanPro},
	}

	for _, tt := range tests {
		t.Run(tt.priceID, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			resolver := NewPlanResolver(repo)

			mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
				WithArgs(tt.priceID).
				WillReturnError(sql.ErrNoRows)

			plan, err := resolver.Resolve(context.Background(), tt.priceID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan)
		})
	}
}

func TestResolveUnknownPrice(t *testing.T) {
	repo, mock := newMockRepo(t)
	resolver := NewPlanResolver(repo)

	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_basic2019").
		WillReturnError(sql.ErrNoRows)

	_, err := resolver.Resolve(context.Background(), "price_basic2019")
	assert.ErrorIs(t, err, ErrPlanNotResolved)
}

func TestResolveEmptyPrice(t *testing.T) {
	repo, _ := newMockRepo(t)
	resolver := NewPlanResolver(repo)

	_, err := resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrPlanNotResolved)
}
