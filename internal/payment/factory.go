package payment

import (
	"fmt"

	"github.com/matthieukhl/storefront/internal/config"
)

// NewGateway creates a gateway based on configuration
func NewGateway(cfg *config.PaymentConfig) (Gateway, error) {
	switch cfg.Provider {
	case "stripe":
		return NewStripeGateway(cfg.SecretKey)
	case "mock":
		return NewMockGateway(), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", cfg.Provider)
	}
}
