package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/events"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/payment"
	"github.com/matthieukhl/storefront/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	store     *memory.Store
	gateway   *payment.MockGateway
	publisher *events.Recorder
	identity  *auth.Identity
	widget    *models.Product
	gadget    *models.Product
}

func testConfig() *config.Config {
	return &config.Config{
		Payment:    config.PaymentConfig{Provider: "mock", Currency: "INR"},
		Storefront: config.StorefrontConfig{FrontendURL: "http://shop.test/"},
		Checkout:   config.CheckoutConfig{CODFee: "30.00"},
		Events:     config.EventsConfig{Topic: "orders.placed"},
	}
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:     memory.New(),
		gateway:   payment.NewMockGateway(),
		publisher: &events.Recorder{},
	}

	user := &models.User{Username: "ada@example.com", Email: "ada@example.com"}
	require.NoError(t, f.store.CreateUser(ctx, user, nil))
	f.identity = &auth.Identity{UserID: user.ID, Username: user.Username}

	f.widget = &models.Product{Title: "Widget", Slug: "widget", Price: decimal.RequireFromString("19.99")}
	f.gadget = &models.Product{Title: "Gadget", Slug: "gadget", Price: decimal.RequireFromString("5.00")}
	require.NoError(t, f.store.CreateProduct(ctx, f.widget))
	require.NoError(t, f.store.CreateProduct(ctx, f.gadget))

	svc, err := NewService(f.store, f.gateway, f.publisher, cfg)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) orders(t *testing.T) []models.Order {
	t.Helper()
	orders, err := f.store.FindRecent(context.Background(), 0)
	require.NoError(t, err)
	return orders
}

func TestCODTotalIncludesFee(t *testing.T) {
	f := newFixture(t, testConfig())

	res, err := f.svc.COD(context.Background(), f.identity, []CartLine{
		{ProductID: f.widget.ID, Quantity: 2},
		{ProductID: f.gadget.ID, Quantity: 1},
	}, Customer{Name: "Ada", Phone: "123", Pincode: "560001"})
	require.NoError(t, err)
	assert.Equal(t, "74.98", res.Total.StringFixed(2))

	orders := f.orders(t)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, res.OrderID, o.ID)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, "30.00", o.CODFee.StringFixed(2))
	assert.True(t, o.TotalAmount.Equal(o.ItemsTotal().Add(o.CODFee)))
	assert.Equal(t, models.PaymentMethodCOD, o.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, "India", o.Country)
	assert.Equal(t, "560001", o.PostalCode)
	assert.False(t, o.Ordered)

	msgs := f.publisher.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "orders.placed", msgs[0].Topic)
	assert.Equal(t, o.ID, msgs[0].Key)
}

func TestCODPriceSource(t *testing.T) {
	lines := func(f *fixture) []CartLine {
		return []CartLine{{ProductID: f.widget.ID, Quantity: 1, Price: decimal.RequireFromString("0.01")}}
	}

	f := newFixture(t, testConfig())
	res, err := f.svc.COD(context.Background(), f.identity, lines(f), Customer{})
	require.NoError(t, err)
	assert.Equal(t, "49.99", res.Total.StringFixed(2))

	cfg := testConfig()
	cfg.Checkout.TrustClientPrice = true
	f = newFixture(t, cfg)
	res, err = f.svc.COD(context.Background(), f.identity, lines(f), Customer{})
	require.NoError(t, err)
	assert.Equal(t, "30.01", res.Total.StringFixed(2))
}

func TestCODTrustedPriceMustFitTwoDecimals(t *testing.T) {
	cfg := testConfig()
	cfg.Checkout.TrustClientPrice = true
	f := newFixture(t, cfg)

	_, err := f.svc.COD(context.Background(), f.identity, []CartLine{
		{ProductID: f.widget.ID, Quantity: 3, Price: decimal.RequireFromString("0.005")},
	}, Customer{})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, f.orders(t))

	res, err := f.svc.COD(context.Background(), f.identity, []CartLine{
		{ProductID: f.widget.ID, Quantity: 3, Price: decimal.RequireFromString("1.500")},
	}, Customer{})
	require.NoError(t, err)
	assert.Equal(t, "34.50", res.Total.StringFixed(2))
	o := f.orders(t)[0]
	assert.True(t, o.TotalAmount.Equal(o.ItemsTotal().Add(o.CODFee)))
}

func TestCODRejections(t *testing.T) {
	tests := []struct {
		name      string
		anonymous bool
		lines     func(f *fixture) []CartLine
		wantErr   error
	}{
		{
			name:    "empty cart",
			lines:   func(*fixture) []CartLine { return nil },
			wantErr: models.ErrValidation,
		},
		{
			name:      "anonymous",
			anonymous: true,
			lines:     func(f *fixture) []CartLine { return []CartLine{{ProductID: f.widget.ID, Quantity: 1}} },
			wantErr:   models.ErrUnauthorized,
		},
		{
			name:    "zero quantity",
			lines:   func(f *fixture) []CartLine { return []CartLine{{ProductID: f.widget.ID, Quantity: 0}} },
			wantErr: models.ErrValidation,
		},
		{
			name: "unknown product after a good line",
			lines: func(f *fixture) []CartLine {
				return []CartLine{{ProductID: f.widget.ID, Quantity: 1}, {ProductID: "missing", Quantity: 1}}
			},
			wantErr: models.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testConfig())
			id := f.identity
			if tt.anonymous {
				id = nil
			}

			_, err := f.svc.COD(context.Background(), id, tt.lines(f), Customer{})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.orders(t))
			assert.Empty(t, f.publisher.Messages())
		})
	}
}

func TestCODSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t, testConfig())
	f.publisher.Err = errors.New("broker down")

	_, err := f.svc.COD(context.Background(), f.identity, []CartLine{{ProductID: f.gadget.ID, Quantity: 1}}, Customer{})
	require.NoError(t, err)
	assert.Len(t, f.orders(t), 1)
}

type blockingPublisher struct{}

func (blockingPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingPublisher) Close() error { return nil }

func TestCODDoesNotWaitOnStuckBroker(t *testing.T) {
	f := newFixture(t, testConfig())
	svc, err := NewService(f.store, f.gateway, blockingPublisher{}, testConfig())
	require.NoError(t, err)
	svc.publishTimeout = 20 * time.Millisecond

	start := time.Now()
	res, err := svc.COD(context.Background(), f.identity, []CartLine{{ProductID: f.gadget.ID, Quantity: 1}}, Customer{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, f.orders(t), 1)
}

func TestOnlineSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig())

	session, err := f.svc.Online(ctx, f.identity, []OnlineLine{
		{Title: "Widget", Price: decimal.RequireFromString("19.99"), Quantity: 2, Image: "/media/products/widget.png"},
		{Title: "Gadget", Price: decimal.RequireFromString("5.00")},
	}, "http://localhost:8000")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)

	reqs := f.gateway.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, "inr", req.Currency)
	assert.Equal(t, "http://shop.test/checkout/success/", req.SuccessURL)
	assert.Equal(t, "http://shop.test/checkout/cancel/", req.CancelURL)
	require.Len(t, req.LineItems, 2)
	assert.Equal(t, payment.LineItem{
		Name:       "Widget",
		UnitAmount: 1999,
		Quantity:   2,
		ImageURL:   "http://localhost:8000/media/products/widget.png",
	}, req.LineItems[0])
	assert.Equal(t, int64(1), req.LineItems[1].Quantity)
	assert.Empty(t, req.LineItems[1].ImageURL)

	assert.Empty(t, f.orders(t))

	p, err := f.store.PaymentByExternalID(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, p.OrderID)
	assert.Equal(t, "44.98", p.Amount.StringFixed(2))
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, models.PaymentMethodOnline, p.PaymentMethod)
}

func TestOnlineAnonymousRecordsNoPayment(t *testing.T) {
	f := newFixture(t, testConfig())

	session, err := f.svc.Online(context.Background(), nil, []OnlineLine{
		{Title: "Widget", Price: decimal.RequireFromString("19.99"), Quantity: 1},
	}, "http://localhost:8000")
	require.NoError(t, err)

	_, err = f.store.PaymentByExternalID(context.Background(), session.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOnlineGatewayFailure(t *testing.T) {
	f := newFixture(t, testConfig())
	f.gateway.Err = errors.New("Invalid API Key provided")

	_, err := f.svc.Online(context.Background(), f.identity, []OnlineLine{
		{Title: "Widget", Price: decimal.RequireFromString("19.99"), Quantity: 1},
	}, "")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Invalid API Key provided", err.Error())
}

func TestOnlineValidation(t *testing.T) {
	f := newFixture(t, testConfig())

	_, err := f.svc.Online(context.Background(), nil, nil, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.Online(context.Background(), nil, []OnlineLine{{Title: "x", Price: decimal.NewFromInt(1), Quantity: -1}}, "")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, f.gateway.Requests())
}

func TestUnitAmount(t *testing.T) {
	tests := map[string]int64{
		"19.99":  1999,
		"5":      500,
		"0.29":   29,
		"10.005": 1001,
	}
	for price, want := range tests {
		assert.Equal(t, want, UnitAmount(decimal.RequireFromString(price)), price)
	}
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "http://h.test/media/a.png", absoluteURL("http://h.test", "/media/a.png"))
	assert.Equal(t, "http://h.test/media/a.png", absoluteURL("http://h.test/cart/", "media/a.png"))
	assert.Equal(t, "https://cdn.test/a.png", absoluteURL("http://h.test", "https://cdn.test/a.png"))
	assert.Equal(t, "", absoluteURL("http://h.test", ""))
	assert.Equal(t, "", absoluteURL("", "/media/a.png"))
}

func TestBuyNowCOD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testConfig())

	order, err := f.svc.BuyNowCOD(ctx, f.identity, f.widget.ID, Shipping{FullName: "Ada", Phone: "1", Address: "1 Analytical Way", Pincode: "560001"})
	require.NoError(t, err)

	got, err := f.store.OrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Ordered)
	require.NotNil(t, got.OrderedAt)
	assert.True(t, got.CODFee.IsZero())
	assert.Equal(t, "19.99", got.TotalAmount.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, "1 Analytical Way", got.AddressLine1)

	_, err = f.svc.BuyNowCOD(ctx, nil, f.widget.ID, Shipping{})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.svc.BuyNowCOD(ctx, f.identity, "missing", Shipping{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
