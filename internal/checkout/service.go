// Package checkout turns carts into orders or hosted payment sessions.
package checkout

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/events"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/payment"
	"github.com/matthieukhl/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

// Repository is the slice of the store checkout needs.
type Repository interface {
	repository.CatalogRepository
	repository.OrderRepository
}

type Service struct {
	repo      Repository
	gateway   payment.Gateway
	publisher events.Publisher

	codFee           decimal.Decimal
	trustClientPrice bool
	currency         string
	frontendURL      string
	topic            string
	publishTimeout   time.Duration
	now              func() time.Time
}

// NewService creates a checkout service from the loaded configuration
func NewService(repo Repository, gateway payment.Gateway, publisher events.Publisher, cfg *config.Config) (*Service, error) {
	fee, err := cfg.Checkout.CODFeeAmount()
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		repo:             repo,
		gateway:          gateway,
		publisher:        publisher,
		codFee:           fee,
		trustClientPrice: cfg.Checkout.TrustClientPrice,
		currency:         strings.ToLower(cfg.Payment.Currency),
		frontendURL:      strings.TrimRight(cfg.Storefront.FrontendURL, "/"),
		topic:            cfg.Events.Topic,
		publishTimeout:   2 * time.Second,
		now:              func() time.Time { return time.Now().UTC() },
	}, nil
}

// GatewayError carries a payment gateway failure verbatim.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }

// publishPlaced announces a committed order. Broker trouble is logged and
// never undoes the order; a slow broker holds the caller for at most
// publishTimeout.
func (s *Service) publishPlaced(ctx context.Context, order *models.Order) {
	if s.topic == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishEvent(ctx, s.topic, order.ID, events.NewOrderPlaced(order)); err != nil {
		slog.Error("Failed to publish order event", "order_id", order.ID, "err", err)
	}
}
