package checkout

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/payment"
	"github.com/shopspring/decimal"
)

// OnlineLine is one priced line sent to the hosted payment page.
type OnlineLine struct {
	Title    string
	Price    decimal.Decimal
	Quantity int
	Image    string
}

var hundred = decimal.NewFromInt(100)

// UnitAmount converts a price to minor currency units, rounding half away
// from zero.
func UnitAmount(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

// absoluteURL resolves a relative image path against base.
func absoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	return b.ResolveReference(r).String()
}

// Online requests a hosted card checkout session for the lines. No order is
// created; an authenticated caller gets a pending payment keyed by the
// session id.
func (s *Service) Online(ctx context.Context, id *auth.Identity, lines []OnlineLine, baseURL string) (*payment.Session, error) {
	if len(lines) == 0 {
		return nil, models.Public(models.ErrValidation, "No items to pay for")
	}

	req := payment.SessionRequest{
		Currency:   s.currency,
		LineItems:  make([]payment.LineItem, 0, len(lines)),
		SuccessURL: s.frontendURL + "/checkout/success/",
		CancelURL:  s.frontendURL + "/checkout/cancel/",
	}
	amount := decimal.Zero
	for _, line := range lines {
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, models.Public(models.ErrValidation, "Quantity must be positive")
		}
		if line.Price.IsNegative() {
			return nil, models.Public(models.ErrValidation, "Price must not be negative")
		}
		if strings.TrimSpace(line.Title) == "" {
			return nil, models.Public(models.ErrValidation, "Item title is required")
		}

		req.LineItems = append(req.LineItems, payment.LineItem{
			Name:       line.Title,
			UnitAmount: UnitAmount(line.Price),
			Quantity:   int64(qty),
			ImageURL:   absoluteURL(baseURL, line.Image),
		})
		amount = amount.Add(line.Price.Mul(decimal.NewFromInt(int64(qty))))
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	if id != nil {
		p := &models.Payment{
			UserID:        id.UserID,
			ExternalID:    session.ID,
			Amount:        amount,
			Status:        models.PaymentStatusPending,
			PaymentMethod: models.PaymentMethodOnline,
			Timestamp:     s.now(),
		}
		if err := s.repo.CreatePayment(ctx, p); err != nil {
			slog.Error("Failed to record pending payment", "session_id", session.ID, "err", err)
		}
	}
	return session, nil
}
