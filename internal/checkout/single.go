package checkout

import (
	"context"
	"fmt"

	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Shipping is what the single-product checkout form collects.
type Shipping struct {
	FullName string
	Phone    string
	Address  string
	Pincode  string
}

// BuyNowCOD orders one unit of a product at its current price. The
// single-product form carries no cash-on-delivery surcharge.
func (s *Service) BuyNowCOD(ctx context.Context, id *auth.Identity, productID string, ship Shipping) (*models.Order, error) {
	if id == nil {
		return nil, models.Public(models.ErrUnauthorized, "Login required")
	}

	product, err := s.repo.ProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	now := s.now()
	order := &models.Order{
		UserID:        id.UserID,
		Ordered:       true,
		OrderedAt:     &now,
		FullName:      ship.FullName,
		Phone:         ship.Phone,
		AddressLine1:  ship.Address,
		PostalCode:    ship.Pincode,
		Country:       models.DefaultCountry,
		PaymentMethod: models.PaymentMethodCOD,
		PaymentStatus: models.PaymentStatusPending,
		CODFee:        decimal.Zero,
		TotalAmount:   product.Price,
		CreatedAt:     now,
		Items:         []models.OrderItem{{ProductID: product.ID, Quantity: 1, Price: product.Price}},
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.publishPlaced(ctx, order)
	return order, nil
}
