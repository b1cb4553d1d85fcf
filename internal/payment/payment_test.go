package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSessionParams(t *testing.T) {
	params := buildSessionParams(SessionRequest{
		Currency: "inr",
		LineItems: []LineItem{
			{Name: "Widget", UnitAmount: 1999, Quantity: 2, ImageURL: "http://shop.test/media/products/w.png"},
			{Name: "Plain", UnitAmount: 500, Quantity: 1},
		},
		SuccessURL: "http://shop.test/checkout/success/",
		CancelURL:  "http://shop.test/checkout/cancel/",
	})

	assert.Equal(t, "payment", *params.Mode)
	require.Len(t, params.PaymentMethodTypes, 1)
	assert.Equal(t, "card", *params.PaymentMethodTypes[0])
	assert.Equal(t, "http://shop.test/checkout/success/", *params.SuccessURL)
	assert.Equal(t, "http://shop.test/checkout/cancel/", *params.CancelURL)

	require.Len(t, params.LineItems, 2)
	first := params.LineItems[0]
	assert.Equal(t, int64(1999), *first.PriceData.UnitAmount)
	assert.Equal(t, int64(2), *first.Quantity)
	assert.Equal(t, "inr", *first.PriceData.Currency)
	assert.Equal(t, "Widget", *first.PriceData.ProductData.Name)
	require.Len(t, first.PriceData.ProductData.Images, 1)
	assert.Equal(t, "http://shop.test/media/products/w.png", *first.PriceData.ProductData.Images[0])

	assert.Empty(t, params.LineItems[1].PriceData.ProductData.Images)
}

func TestMockGatewayFailure(t *testing.T) {
	g := NewMockGateway()
	s, err := g.CreateCheckoutSession(context.Background(), SessionRequest{})
	require.NoError(t, err)
	assert.Contains(t, s.ID, "cs_mock_")

	g.Err = errors.New("card declined")
	_, err = g.CreateCheckoutSession(context.Background(), SessionRequest{})
	assert.EqualError(t, err, "card declined")
	assert.Len(t, g.Requests(), 2)
}

func TestNewGateway(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PaymentConfig
		want    string
		wantErr bool
	}{
		{name: "mock", cfg: config.PaymentConfig{Provider: "mock"}, want: "mock"},
		{name: "stripe", cfg: config.PaymentConfig{Provider: "stripe", SecretKey: "sk_test_x"}, want: "stripe"},
		{name: "stripe without key", cfg: config.PaymentConfig{Provider: "stripe"}, wantErr: true},
		{name: "unknown", cfg: config.PaymentConfig{Provider: "paypal"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGateway(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Name())
		})
	}
}
