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

func TestRecordSaleCommission(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewAffiliateService(repo)

	affiliateID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM affiliates WHERE referral_code").
		WithArgs("MARIA123").
		WillReturnRows(sqlmock.NewRows(affiliateColumns).
			AddRow(affiliateID.String(), "Maria", nil, "MARIA123", 0.3, nil, "active", now))

	// The exact float varies in the last bits (97 * 0.3), so the amount is
	// matched loosely here and precisely on the returned value below.
	mock.ExpectQuery("INSERT INTO commissions").
		WithArgs(affiliateID, sqlmock.AnyArg(), "PENDING", "cs_test_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.NewString(), now))

	commission, err := svc.RecordSaleCommission(context.Background(), " maria123 ", 97, "cs_test_1")
	require.NoError(t, err)
	assert.InDelta(t, 29.1, commission.Amount, 0.0001)
	assert.Equal(t, "PENDING", string(commission.Status))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSaleCommissionInactiveAffiliate(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewAffiliateService(repo)

	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM affiliates WHERE referral_code").
		WithArgs("OLDCODE1").
		WillReturnRows(sqlmock.NewRows(affiliateColumns).
			AddRow(uuid.NewString(), "Antigo", nil, "OLDCODE1", 0.3, nil, "inactive", now))

	_, err := svc.RecordSaleCommission(context.Background(), "OLDCODE1", 97, "cs_test_2")
	assert.ErrorIs(t, err, ErrAffiliateInactive)
}

func TestCreateAffiliateExplicitCodeTaken(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewAffiliateService(repo)

	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM affiliates WHERE referral_code").
		WithArgs("MARIA123").
		WillReturnRows(sqlmock.NewRows(affiliateColumns).
			AddRow(uuid.NewString(), "Maria", nil, "MARIA123", 0.3, nil, "active", now))

	_, err := svc.CreateAffiliate(context.Background(), "Outra Maria", nil, nil, "maria123", 0.2)
	assert.ErrorIs(t, err, ErrAffiliateCodeTaken)
}

func TestCreateAffiliateDefaultRateFromSettings(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewAffiliateService(repo)

	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM affiliates WHERE referral_code").
		WithArgs("NOVO2024").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("SELECT value FROM settings WHERE key").
		WithArgs("default_commission_rate").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("0.25"))

	mock.ExpectQuery("INSERT INTO affiliates").
		WithArgs("João", nil, "NOVO2024", 0.25, nil, "active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.NewString(), now))

	affiliate, err := svc.CreateAffiliate(context.Background(), "João", nil, nil, "novo2024", 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, affiliate.CommissionRate, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAffiliateRateFallsBackWhenSettingMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := NewAffiliateService(repo)

	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM affiliates WHERE referral_code").
		WithArgs("SOLO2024").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("SELECT value FROM settings WHERE key").
		WithArgs("default_commission_rate").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("INSERT INTO affiliates").
		WithArgs("Solo", nil, "SOLO2024", 0.3, nil, "active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.NewString(), now))

	affiliate, err := svc.CreateAffiliate(context.Background(), "Solo", nil, nil, "solo2024", 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, affiliate.CommissionRate, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
