package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway creates Checkout Sessions through a per-instance client, so
// the API key never lives in package state.
type StripeGateway struct {
	sc *client.API
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	return &StripeGateway{sc: client.New(secretKey, nil)}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if len(req.LineItems) == 0 {
		return nil, errors.New("checkout session needs at least one line item")
	}

	params := buildSessionParams(req)
	params.Context = ctx

	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func buildSessionParams(req SessionRequest) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{li.ImageURL})
		}

		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	return &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          items,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
}
