package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v79"

	"github.com/funnelhub/backend/internal/billing"
	"github.com/funnelhub/backend/internal/config"
	"github.com/funnelhub/backend/internal/model"
	"github.com/funnelhub/backend/internal/repository"
)

var (
	ErrUserNotMatched     = errors.New("could not match the checkout session to a user")
	ErrNoSubscription     = errors.New("checkout session has no subscription")
	ErrPlanNotPurchasable = errors.New("plan has no price configured for this interval")
)

// StripeAPI is the slice of the billing client the reconciler needs,
// narrowed so tests can stub it.
type StripeAPI interface {
	GetCheckoutSession(id string) (*stripe.CheckoutSession, error)
	GetSubscription(id string) (*stripe.Subscription, error)
	CreateCheckoutSession(p billing.CheckoutParams) (string, error)
}

// BillingService keeps profiles.plan and the subscriptions table consistent
// with Stripe. Both entry points (webhook and manual sync) converge on
// applySubscription, which writes the subscription row and the plan field in
// one transaction.
type BillingService struct {
	repo         *repository.Repository
	resolver     *PlanResolver
	api          StripeAPI
	cfg          *config.Config
	affiliateSvc *AffiliateService
}

func NewBillingService(repo *repository.Repository, resolver *PlanResolver, api StripeAPI, cfg *config.Config) *BillingService {
	return &BillingService{
		repo:     repo,
		resolver: resolver,
		api:      api,
		cfg:      cfg,
	}
}

// SetAffiliateService sets the affiliate service (to avoid circular deps)
func (s *BillingService) SetAffiliateService(affiliateSvc *AffiliateService) {
	s.affiliateSvc = affiliateSvc
}

// HandleEvent processes a verified webhook event. Deliveries of an already
// processed event are skipped via the billing_events table; the processed
// stamp is only written after the handler succeeded, so a delivery that
// failed midway gets handled again on redelivery.
func (s *BillingService) HandleEvent(ctx context.Context, event stripe.Event) error {
	processed, err := s.repo.RecordBillingEvent(ctx, event.ID, string(event.Type))
	if err != nil {
		return fmt.Errorf("failed to record billing event: %w", err)
	}
	if processed {
		log.Printf("Skipping duplicate billing event %s (%s)", event.ID, event.Type)
		return nil
	}

	if err := s.processEvent(ctx, event); err != nil {
		return err
	}

	if err := s.repo.MarkBillingEventProcessed(ctx, event.ID); err != nil {
		// The handlers are idempotent, so a redelivery re-applying the
		// event is harmless.
		log.Printf("WARNING: failed to mark billing event %s processed: %v", event.ID, err)
	}
	return nil
}

func (s *BillingService) processEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return s.handleCheckoutCompleted(ctx, &session)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return s.handleSubscriptionUpdated(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return s.cancelSubscription(ctx, sub.ID)

	default:
		log.Printf("Ignoring billing event type %s", event.Type)
		return nil
	}
}

func (s *BillingService) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	profile, err := s.resolveSessionUser(ctx, uuid.Nil, session)
	if err != nil {
		if errors.Is(err, ErrUserNotMatched) {
			log.Printf("WARNING: checkout session %s matched no user, skipping", session.ID)
			return nil
		}
		return err
	}

	if session.Subscription == nil {
		log.Printf("WARNING: checkout session %s has no subscription, skipping", session.ID)
		return nil
	}

	// Webhook payloads carry the subscription unexpanded; fetch the full
	// object for its items.
	sub, err := s.api.GetSubscription(session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription %s: %w", session.Subscription.ID, err)
	}

	if _, err := s.applySubscription(ctx, profile.ID, sub); err != nil {
		if errors.Is(err, ErrPlanNotResolved) {
			log.Printf("WARNING: could not resolve plan for subscription %s, plan not updated", sub.ID)
			return nil
		}
		return err
	}

	s.recordReferralSale(ctx, session)
	return nil
}

func (s *BillingService) handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		log.Printf("WARNING: subscription %s carries no customer, skipping", sub.ID)
		return nil
	}

	profile, err := s.repo.GetProfileByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			log.Printf("WARNING: no profile for customer %s, skipping subscription %s", sub.Customer.ID, sub.ID)
			return nil
		}
		return err
	}

	if _, err := s.applySubscription(ctx, profile.ID, sub); err != nil {
		if errors.Is(err, ErrPlanNotResolved) {
			log.Printf("WARNING: could not resolve plan for subscription %s, plan not updated", sub.ID)
			return nil
		}
		return err
	}
	return nil
}

type SyncResult struct {
	Plan   string    `json:"plan"`
	UserID uuid.UUID `json:"user_id"`
}

// SyncSession is the pull path: the client calls it after the checkout
// redirect with the session ID. The user is resolved by client reference ID,
// then by the stored customer ID, then by the session email - and the Stripe
// customer gets linked to the profile when only the email matched.
func (s *BillingService) SyncSession(ctx context.Context, callerID uuid.UUID, sessionID string) (*SyncResult, error) {
	session, err := s.api.GetCheckoutSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session: %w", err)
	}

	profile, err := s.resolveSessionUser(ctx, callerID, session)
	if err != nil {
		return nil, err
	}

	if session.Subscription == nil {
		return nil, ErrNoSubscription
	}

	sub := session.Subscription
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		// The expand can be dropped on some API versions; refetch.
		sub, err = s.api.GetSubscription(sub.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch subscription: %w", err)
		}
	}

	plan, err := s.applySubscription(ctx, profile.ID, sub)
	if err != nil {
		return nil, err
	}

	return &SyncResult{Plan: plan, UserID: profile.ID}, nil
}

// applySubscription upserts the subscription row and updates the owner's
// plan in one transaction. Only active and trialing subscriptions grant a
// plan; anything else is left for the deletion path. Re-applying the same
// subscription state is idempotent.
func (s *BillingService) applySubscription(ctx context.Context, userID uuid.UUID, sub *stripe.Subscription) (string, error) {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return "", fmt.Errorf("subscription %s has no price item", sub.ID)
	}
	price := sub.Items.Data[0].Price

	plan, err := s.resolver.Resolve(ctx, price.ID)
	if err != nil {
		return "", err
	}

	status := model.SubscriptionStatus(sub.Status)
	record := &model.Subscription{
		ID:      sub.ID,
		UserID:  userID,
		Status:  status,
		PriceID: price.ID,
	}
	if price.Recurring != nil {
		record.Interval = string(price.Recurring.Interval)
	}
	if sub.CurrentPeriodEnd > 0 {
		periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		record.CurrentPeriodEnd = &periodEnd
	}

	if !record.Entitled() {
		log.Printf("Subscription %s has status %s, plan not updated", sub.ID, status)
		return plan, nil
	}

	if err := s.repo.UpsertSubscriptionAndPlan(ctx, record, plan); err != nil {
		return "", err
	}
	return plan, nil
}

func (s *BillingService) cancelSubscription(ctx context.Context, subID string) error {
	err := s.repo.CancelSubscriptionAndPlan(ctx, subID, model.PlanFree)
	if errors.Is(err, repository.ErrSubscriptionNotFound) {
		log.Printf("WARNING: deletion event for unknown subscription %s", subID)
		return nil
	}
	return err
}

// resolveSessionUser implements the three-step user match. callerID is the
// authenticated caller on the manual sync path and uuid.Nil on the webhook
// path, where only the session's own references are available.
func (s *BillingService) resolveSessionUser(ctx context.Context, callerID uuid.UUID, session *stripe.CheckoutSession) (*model.Profile, error) {
	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	if session.ClientReferenceID != "" {
		if refID, err := uuid.Parse(session.ClientReferenceID); err == nil {
			if profile, err := s.repo.GetProfile(ctx, refID); err == nil {
				s.linkCustomer(ctx, profile, customerID)
				return profile, nil
			}
		}
	}

	if callerID != uuid.Nil {
		if profile, err := s.repo.GetProfile(ctx, callerID); err == nil {
			s.linkCustomer(ctx, profile, customerID)
			return profile, nil
		}
	}

	if customerID != "" {
		profile, err := s.repo.GetProfileByStripeCustomerID(ctx, customerID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, repository.ErrProfileNotFound) {
			return nil, err
		}
	}

	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		profile, err := s.repo.GetProfileByEmail(ctx, session.CustomerDetails.Email)
		if err == nil {
			s.linkCustomer(ctx, profile, customerID)
			return profile, nil
		}
		if !errors.Is(err, repository.ErrProfileNotFound) {
			return nil, err
		}
	}

	return nil, ErrUserNotMatched
}

// linkCustomer stores the Stripe customer ID on first sight so later events
// can be matched without an email fallback.
func (s *BillingService) linkCustomer(ctx context.Context, profile *model.Profile, customerID string) {
	if customerID == "" || (profile.StripeCustomerID != nil && *profile.StripeCustomerID == customerID) {
		return
	}
	if err := s.repo.SetStripeCustomerID(ctx, profile.ID, customerID); err != nil {
		log.Printf("WARNING: failed to link customer %s to profile %s: %v", customerID, profile.ID, err)
		return
	}
	profile.StripeCustomerID = &customerID
}

func (s *BillingService) recordReferralSale(ctx context.Context, session *stripe.CheckoutSession) {
	if s.affiliateSvc == nil {
		return
	}
	code := session.Metadata["referral_code"]
	if code == "" {
		return
	}

	amount := float64(session.AmountTotal) / 100
	if _, err := s.affiliateSvc.RecordSaleCommission(ctx, code, amount, session.ID); err != nil {
		// Commission attribution must not fail the checkout processing.
		log.Printf("WARNING: failed to record commission for session %s (code %s): %v", session.ID, code, err)
	}
}

// CreateCheckout starts a hosted checkout for the given plan and interval,
// carrying the caller as client reference so the webhook can match them.
func (s *BillingService) CreateCheckout(ctx context.Context, userID uuid.UUID, planID, interval, referralCode string) (string, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return "", err
	}

	var priceID *string
	switch interval {
	case "year":
		priceID = plan.StripePriceIDYearly
	default:
		priceID = plan.StripePriceIDMonthly
	}
	if priceID == nil || *priceID == "" {
		return "", ErrPlanNotPurchasable
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	params := billing.CheckoutParams{
		PriceID:           *priceID,
		ClientReferenceID: userID.String(),
		CustomerEmail:     profile.Email,
		ReferralCode:      referralCode,
		SuccessURL:        s.cfg.App.CheckoutSuccessURL,
		CancelURL:         s.cfg.App.CheckoutCancelURL,
	}
	if profile.StripeCustomerID != nil {
		params.CustomerID = *profile.StripeCustomerID
		params.CustomerEmail = ""
	}

	return s.api.CreateCheckoutSession(params)
}

// Reconcile re-derives profiles.plan from the stored subscription rows and
// repairs drift left by a crash between the two writes or by events applied
// out of order. Safe to run repeatedly.
func (s *BillingService) Reconcile(ctx context.Context) (int, error) {
	subs, err := s.repo.GetEntitledSubscriptions(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, sub := range subs {
		plan, err := s.resolver.Resolve(ctx, sub.PriceID)
		if err != nil {
			if errors.Is(err, ErrPlanNotResolved) {
				log.Printf("WARNING: reconcile: unresolvable price %s on subscription %s", sub.PriceID, sub.ID)
				continue
			}
			return repaired, err
		}

		profile, err := s.repo.GetProfile(ctx, sub.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				log.Printf("WARNING: reconcile: subscription %s has no profile", sub.ID)
				continue
			}
			return repaired, err
		}

		if profile.Plan != plan {
			if err := s.repo.UpdateProfilePlan(ctx, profile.ID, plan); err != nil {
				return repaired, err
			}
			log.Printf("Reconciled profile %s plan %s -> %s", profile.ID, profile.Plan, plan)
			repaired++
		}
	}

	return repaired, nil
}
