package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products on the storefront
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Product is a catalog entry. Price carries two decimal places.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Slug        string          `json:"slug" db:"slug"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       string          `json:"image,omitempty" db:"image"`
	CategoryID  *string         `json:"category,omitempty" db:"category_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ImageURL returns the media path of the product image, or "" when unset.
func (p Product) ImageURL(mediaURL string) string {
	if p.Image == "" {
		return ""
	}
	return mediaURL + p.Image
}
