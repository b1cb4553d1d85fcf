package checkout

import (
	"context"
	"fmt"

	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// CartLine is one line of a client cart. Price is only honoured when the
// service is configured to trust client prices.
type CartLine struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	State   string
	Pincode string
}

type CODResult struct {
	OrderID string
	Total   decimal.Decimal
}

// COD places a cash-on-delivery order for the cart. The order and all of
// its items are written together or not at all.
func (s *Service) COD(ctx context.Context, id *auth.Identity, lines []CartLine, customer Customer) (*CODResult, error) {
	if id == nil {
		return nil, models.Public(models.ErrUnauthorized, "Login required")
	}
	if len(lines) == 0 {
		return nil, models.Public(models.ErrValidation, "Cart is empty")
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, models.Public(models.ErrValidation, "Quantity must be at least 1")
		}

		product, err := s.repo.ProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", line.ProductID, err)
		}

		price := product.Price
		if s.trustClientPrice {
			if line.Price.IsNegative() {
				return nil, models.Public(models.ErrValidation, "Price must not be negative")
			}
			// Prices are stored with two decimals; anything finer would
			// make the persisted total disagree with its items.
			if !line.Price.Equal(line.Price.Round(2)) {
				return nil, models.Public(models.ErrValidation, "Price must have at most two decimal places")
			}
			price = line.Price
		}
		items = append(items, models.OrderItem{ProductID: product.ID, Quantity: line.Quantity, Price: price})
	}

	order := &models.Order{
		UserID:        id.UserID,
		FullName:      customer.Name,
		Phone:         customer.Phone,
		Email:         customer.Email,
		AddressLine1:  customer.Address,
		City:          customer.City,
		State:         customer.State,
		PostalCode:    customer.Pincode,
		Country:       models.DefaultCountry,
		PaymentMethod: models.PaymentMethodCOD,
		PaymentStatus: models.PaymentStatusPending,
		CODFee:        s.codFee,
		CreatedAt:     s.now(),
		Items:         items,
	}
	order.TotalAmount = order.ItemsTotal().Add(order.CODFee)

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.publishPlaced(ctx, order)

	return &CODResult{OrderID: order.ID, Total: order.TotalAmount}, nil
}
