package billing

import (
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/funnelhub/backend/internal/model"
)

// Client wraps the Stripe API surface the backend touches. Everything else
// lives in Stripe's dashboard.
type Client struct {
	api *client.API
}

func NewClient(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

// VerifyEvent checks the webhook signature against the endpoint secret and
// returns the parsed event. Unverifiable payloads never reach a handler.
func VerifyEvent(payload []byte, signature, secret string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, secret)
}

func (c *Client) GetCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("subscription")
	params.AddExpand("customer")
	return c.api.CheckoutSessions.Get(id, params)
}

func (c *Client) GetSubscription(id string) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Get(id, nil)
}

type CheckoutParams struct {
	PriceID           string
	ClientReferenceID string
	CustomerID        string
	CustomerEmail     string
	ReferralCode      string
	SuccessURL        string
	CancelURL         string
}

// CreateCheckoutSession starts a subscription checkout and returns the
// hosted payment page URL.
func (c *Client) CreateCheckoutSession(p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.ClientReferenceID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	} else if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	if p.ReferralCode != "" {
		params.AddMetadata("referral_code", p.ReferralCode)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}

// PushPlan mirrors a plan row to Stripe: the product is created or renamed,
// and missing recurring prices are created. Stripe prices are immutable, so
// an amount change yields a fresh price ID; the returned IDs must be stored
// back on the row. Callers treat failures as non-fatal - the local row is
// authoritative.
func (c *Client) PushPlan(plan *model.Plan) error {
	if plan.StripeProductID == nil || *plan.StripeProductID == "" {
		product, err := c.api.Products.New(&stripe.ProductParams{
			Name:        stripe.String(plan.Name),
			Description: stripe.String(plan.Description),
		})
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		plan.StripeProductID = &product.ID
	} else {
		_, err := c.api.Products.Update(*plan.StripeProductID, &stripe.ProductParams{
			Name:        stripe.String(plan.Name),
			Description: stripe.String(plan.Description),
		})
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
	}

	if plan.PriceMonthly > 0 && (plan.StripePriceIDMonthly == nil || *plan.StripePriceIDMonthly == "") {
		price, err := c.newRecurringPrice(*plan.StripeProductID, plan.PriceMonthly, "month")
		if err != nil {
			return err
		}
		plan.StripePriceIDMonthly = &price.ID
	}
	if plan.PriceYearly > 0 && (plan.StripePriceIDYearly == nil || *plan.StripePriceIDYearly == "") {
		price, err := c.newRecurringPrice(*plan.StripeProductID, plan.PriceYearly, "year")
		if err != nil {
			return err
		}
		plan.StripePriceIDYearly = &price.ID
	}

	return nil
}

func (c *Client) newRecurringPrice(productID string, amount float64, interval string) (*stripe.Price, error) {
	price, err := c.api.Prices.New(&stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(int64(amount * 100)),
		Currency:   stripe.String(string(stripe.CurrencyBRL)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s price: %w", interval, err)
	}
	return price, nil
}
