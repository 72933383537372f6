// Package stripe implements the checkout payment gateway against Stripe
// hosted checkout sessions.
package stripe

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// Gateway creates Stripe checkout sessions. The zero value is not usable;
// construct with New.
type Gateway struct {
	successURL string
	cancelURL  string
}

// New configures the stripe-go client. key is the secret API key; success
// and cancel are the redirect URLs baked into every session.
func New(key, successURL, cancelURL string) *Gateway {
	stripe.Key = key
	return &Gateway{successURL: successURL, cancelURL: cancelURL}
}

// CreateSession opens a hosted checkout session for the manifest. Called at
// most once per checkout attempt; failures are wrapped as
// domain.GatewayError and never retried here.
func (g *Gateway) CreateSession(ctx context.Context, manifest domain.CheckoutManifest, customer domain.CustomerDetails) (domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(g.successURL),
		CancelURL:          stripe.String(g.cancelURL),
	}
	params.Context = ctx
	if customer.Email != "" {
		params.CustomerEmail = stripe.String(customer.Email)
		params.AddMetadata("customer_email", customer.Email)
	}
	if customer.Name != "" {
		params.AddMetadata("customer_name", customer.Name)
	}

	for _, line := range manifest.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		if line.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{line.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(manifest.Currency),
				UnitAmount:  stripe.Int64(line.UnitPriceCents),
				ProductData: product,
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	s, err := session.New(params)
	if err != nil {
		return domain.CheckoutSession{}, &domain.GatewayError{Err: err}
	}
	return domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ConfirmSession re-reads the session from Stripe and checks it has been
// paid, so an order cannot be completed from a bare session id.
func (g *Gateway) ConfirmSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return &domain.GatewayError{Err: err}
	}
	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return fmt.Errorf("checkout session %s is %s: %w", sessionID, s.PaymentStatus, domain.ErrConflict)
	}
	return nil
}
