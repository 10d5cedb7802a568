package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v79"

	"github.com/funnelhub/backend/internal/billing"
	"github.com/funnelhub/backend/internal/config"
	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

type stubStripeAPI struct {
	session *stripe.CheckoutSession
	sub     *stripe.Subscription
}

func (s *stubStripeAPI) GetCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	return s.session, nil
}

func (s *stubStripeAPI) GetSubscription(id string) (*stripe.Subscription, error) {
	return s.sub, nil
}

func (s *stubStripeAPI) CreateCheckoutSession(p billing.CheckoutParams) (string, error) {
	return "https://checkout.test/session", nil
}

var profileColumns = []string{
	"id", "email", "full_name", "plan", "role", "stripe_customer_id", "created_at", "updated_at",
}

var subscriptionColumns = []string{
	"id", "user_id", "status", "price_id", "interval", "current_period_end", "created_at", "updated_at",
}

func newBillingService(repo *repository.Repository, api StripeAPI) *BillingService {
	return NewBillingService(repo, NewPlanResolver(repo), api, &config.Config{})
}

func activeSubscription(id, priceID string) *stripe.Subscription {
	return &stripe.Subscription{
		ID:               id,
		Status:           stripe.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour).Unix(),
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{
					ID: priceID,
					Recurring: &stripe.PriceRecurring{
						Interval: stripe.PriceRecurringIntervalMonth,
					},
				}},
			},
		},
	}
}

func TestHandleEventSkipsDuplicates(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	mock.ExpectQuery("INSERT INTO billing_events").
		WithArgs("evt_dup", "customer.subscription.updated").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(true))

	event := stripe.Event{
		ID:   "evt_dup",
		Type: "customer.subscription.updated",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"sub_1"}`)},
	}

	// Second delivery of an already processed event is a no-op.
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleEventRetriesAfterFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	userID := uuid.New()

	// First delivery: the event is recorded but handling dies mid-flight,
	// so no processed stamp is written.
	mock.ExpectQuery("INSERT INTO billing_events").
		WithArgs("evt_flaky", "customer.subscription.deleted").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(false))
	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	event := stripe.Event{
		ID:   "evt_flaky",
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"sub_flaky"}`)},
	}
	require.Error(t, svc.HandleEvent(context.Background(), event))

	// Redelivery: the event is still unprocessed, so it is handled again
	// and only now stamped.
	mock.ExpectQuery("INSERT INTO billing_events").
		WithArgs("evt_flaky", "customer.subscription.deleted").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(false))

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE subscriptions SET status = 'canceled'").
		WithArgs("sub_flaky").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(userID.String()))
	mock.ExpectExec("UPDATE profiles SET plan").
		WithArgs(userID, model.PlanFree).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE billing_events SET processed_at").
		WithArgs("evt_flaky").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionDeletedRevertsPlan(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	userID := uuid.New()

	mock.ExpectQuery("INSERT INTO billing_events").
		WithArgs("evt_del", "customer.subscription.deleted").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(false))

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE subscriptions SET status = 'canceled'").
		WithArgs("sub_gone").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(userID.String()))
	mock.ExpectExec("UPDATE profiles SET plan").
		WithArgs(userID, model.PlanFree).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE billing_events SET processed_at").
		WithArgs("evt_del").
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := stripe.Event{
		ID:   "evt_del",
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"sub_gone"}`)},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionDeletedUnknownIsIgnored(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	mock.ExpectQuery("INSERT INTO billing_events").
		WithArgs("evt_unknown", "customer.subscription.deleted").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(false))

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE subscriptions SET status = 'canceled'").
		WithArgs("sub_never_seen").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()
	mock.ExpectExec("UPDATE billing_events SET processed_at").
		WithArgs("evt_unknown").
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := stripe.Event{
		ID:   "evt_unknown",
		Type: "customer.subscription.deleted",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"sub_never_seen"}`)},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySubscriptionWritesRowAndPlan(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	userID := uuid.New()
	sub := activeSubscription("sub_new", "price_table_pro")

	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_table_pro").
		WillReturnRows(planRow(model.PlanPro))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subscriptions").
		WithArgs("sub_new", userID, "active", "price_table_pro", "month", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE profiles SET plan").
		WithArgs(userID, model.PlanPro).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	plan, err := svc.applySubscription(context.Background(), userID, sub)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySubscriptionPastDueLeavesPlan(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	sub := activeSubscription("sub_late", "price_table_pro")
	sub.Status = stripe.SubscriptionStatusPastDue

	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_table_pro").
		WillReturnRows(planRow(model.PlanPro))

	// No transaction: a past_due subscription grants nothing.
	plan, err := svc.applySubscription(context.Background(), uuid.New(), sub)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionUpdatedUnresolvablePriceSkips(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO billing_events").
		WithArgs("evt_upd", "customer.subscription.updated").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(false))

	mock.ExpectQuery("SELECT \\* FROM profiles WHERE stripe_customer_id").
		WithArgs("cus_1").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(userID.String(), "user@test.com", nil, "pro", "user", "cus_1", now, now))

	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_mystery9").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec("UPDATE billing_events SET processed_at").
		WithArgs("evt_upd").
		WillReturnResult(sqlmock.NewResult(0, 1))

	raw := `{"id":"sub_upd","status":"active","customer":{"id":"cus_1"},` +
		`"items":{"data":[{"price":{"id":"price_mystery9"}}]}}`
	event := stripe.Event{
		ID:   "evt_upd",
		Type: "customer.subscription.updated",
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}

	// The event is swallowed and the plan stays as it was.
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncSessionMatchesCallerAndAppliesPlan(t *testing.T) {
	repo, mock := newMockRepo(t)

	callerID := uuid.New()
	now := time.Now()

	api := &stubStripeAPI{
		session: &stripe.CheckoutSession{
			ID:                "cs_test",
			ClientReferenceID: callerID.String(),
			Subscription:      activeSubscription("sub_sync", "price_table_pro"),
		},
	}
	svc := newBillingService(repo, api)

	mock.ExpectQuery("SELECT \\* FROM profiles WHERE id").
		WithArgs(callerID).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(callerID.String(), "user@test.com", nil, "free", "user", nil, now, now))

	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_table_pro").
		WillReturnRows(planRow(model.PlanPro))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subscriptions").
		WithArgs("sub_sync", callerID, "active", "price_table_pro", "month", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE profiles SET plan").
		WithArgs(callerID, model.PlanPro).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.SyncSession(context.Background(), callerID, "cs_test")
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, result.Plan)
	assert.Equal(t, callerID, result.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileRepairsDriftedPlan(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM subscriptions WHERE status IN").
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow("sub_drift", userID.String(), "active", "price_table_pro", "month", nil, now, now))

	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_table_pro").
		WillReturnRows(planRow(model.PlanPro))

	// Profile says free while the subscription grants pro; the sweep fixes it.
	mock.ExpectQuery("SELECT \\* FROM profiles WHERE id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(userID.String(), "user@test.com", nil, "free", "user", nil, now, now))

	mock.ExpectExec("UPDATE profiles SET plan").
		WithArgs(userID, model.PlanPro).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repaired, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileAlreadyConsistent(t *testing.T) {
	repo, mock := newMockRepo(t)
	svc := newBillingService(repo, &stubStripeAPI{})

	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM subscriptions WHERE status IN").
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow("sub_ok", userID.String(), "active", "price_table_pro", "month", nil, now, now))

	mock.ExpectQuery("SELECT \\* FROM plans WHERE stripe_price_id_monthly").
		WithArgs("price_table_pro").
		WillReturnRows(planRow(model.PlanPro))

	mock.ExpectQuery("SELECT \\* FROM profiles WHERE id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow(userID.String(), "user@test.com", nil, "pro", "user", nil, now, now))

	repaired, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
	assert.NoError(t, mock.ExpectationsWereMet())
}
