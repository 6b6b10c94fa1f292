package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/subscription"

	"github.com/BiggBoiLeo/Rothbard-Backend/config"
)

// CheckoutDetails is the normalized projection of a processor checkout
// session returned to callers.
type CheckoutDetails struct {
	Plan     string  `json:"plan"`
	Amount   float64 `json:"amount"` // major currency units
	Currency string  `json:"currency"`
	Customer string  `json:"customer"` // payer email
	Status   string  `json:"status"`
}

// Gateway wraps the payment processor's checkout and subscription calls so
// handlers can be tested against fakes.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, accountID, email, priceID, successURL, cancelURL string) (string, error)
	GetCheckoutDetails(ctx context.Context, sessionID string) (*CheckoutDetails, error)
	SubscriptionStatus(ctx context.Context, subscriptionID string) (string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// StripeGateway implements Gateway against the Stripe API
type StripeGateway struct{}

// NewStripeGateway configures the Stripe client for the active environment
func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey()
	return &StripeGateway{}
}

// CreateCheckoutSession opens a subscription-mode checkout session with the
// owning account's id stamped into subscription metadata. That stamp is
// what later lets webhook events find the account.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, accountID, email, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"account_id":    accountID,
				"account_email": email,
			},
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.ID, nil
}

// GetCheckoutDetails retrieves a session with line items expanded and
// projects it down to the fields callers are shown.
func (g *StripeGateway) GetCheckoutDetails(ctx context.Context, sessionID string) (*CheckoutDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items.data.price.product")

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}

	plan := "Unknown Product"
	if sess.LineItems != nil && len(sess.LineItems.Data) > 0 {
		li := sess.LineItems.Data[0]
		if li.Price != nil && li.Price.Product != nil && li.Price.Product.Name != "" {
			plan = li.Price.Product.Name
		}
	}

	payerEmail := ""
	if sess.Customer != nil {
		custParams := &stripe.CustomerParams{}
		custParams.Context = ctx
		cust, err := customer.Get(sess.Customer.ID, custParams)
		if err != nil {
			return nil, fmt.Errorf("retrieve customer: %w", err)
		}
		payerEmail = cust.Email
	}

	return &CheckoutDetails{
		Plan:     plan,
		Amount:   float64(sess.AmountTotal) / 100,
		Currency: string(sess.Currency),
		Customer: payerEmail,
		Status:   string(sess.Status),
	}, nil
}

// SubscriptionStatus reports the processor-side status for a subscription
func (g *StripeGateway) SubscriptionStatus(ctx context.Context, subscriptionID string) (string, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	s, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return "", fmt.Errorf("retrieve subscription: %w", err)
	}
	return string(s.Status), nil
}

// CancelSubscription cancels a subscription immediately
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := subscription.Cancel(subscriptionID, params); err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}
