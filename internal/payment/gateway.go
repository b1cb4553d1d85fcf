// Package payment talks to the hosted card-payment gateway.
package payment

import "context"

// LineItem is one priced line of a hosted checkout session. UnitAmount is
// in minor currency units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
	ImageURL   string
}

type SessionRequest struct {
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// Session is the gateway's handle for a created checkout session.
type Session struct {
	ID  string
	URL string
}

// Gateway creates hosted checkout sessions.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	Name() string
}
