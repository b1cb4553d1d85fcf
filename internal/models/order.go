package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed checkout with denormalized contact and shipping fields.
// TotalAmount is the sum of item subtotals plus CODFee.
type Order struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	Ordered       bool            `json:"ordered" db:"ordered"`
	OrderedAt     *time.Time      `json:"ordered_at" db:"ordered_at"`
	FullName      string          `json:"full_name" db:"full_name"`
	Phone         string          `json:"phone" db:"phone"`
	Email         string          `json:"email" db:"email"`
	AddressLine1  string          `json:"address_line1" db:"address_line1"`
	AddressLine2  string          `json:"address_line2" db:"address_line2"`
	City          string          `json:"city" db:"city"`
	State         string          `json:"state" db:"state"`
	PostalCode    string          `json:"postal_code" db:"postal_code"`
	Country       string          `json:"country" db:"country"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	PaymentStatus string          `json:"payment_status" db:"payment_status"`
	CODFee        decimal.Decimal `json:"cod_fee" db:"cod_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem snapshots the price paid for a product at purchase time.
type OrderItem struct {
	ID        string          `json:"id" db:"id"`
	OrderID   string          `json:"order_id" db:"order_id"`
	ProductID string          `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// Subtotal is quantity × snapshot price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the subtotals of the order's items, surcharge excluded.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Payment tracks an external payment. OrderID stays nil until an order exists.
type Payment struct {
	ID            string          `json:"id" db:"id"`
	UserID        string          `json:"user_id" db:"user_id"`
	OrderID       *string         `json:"order_id" db:"order_id"`
	ExternalID    string          `json:"stripe_payment_id" db:"stripe_payment_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Status        string          `json:"status" db:"status"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Timestamp     time.Time       `json:"timestamp" db:"timestamp"`
}

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// DefaultCountry is stored when the customer leaves country blank.
const DefaultCountry = "India"
