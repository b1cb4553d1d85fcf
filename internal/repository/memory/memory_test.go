package memory

import (
	"context"
	"testing"
	"time"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store) *models.User {
	t.Helper()
	u := &models.User{Username: "ada@example.com", Email: "ada@example.com"}
	require.NoError(t, s.CreateUser(context.Background(), u, &models.UserProfile{FullName: "Ada"}))
	return u
}

func seedProduct(t *testing.T, s *Store, slug, price string) *models.Product {
	t.Helper()
	p := &models.Product{Title: slug, Slug: slug, Price: decimal.RequireFromString(price)}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func TestListProductsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, slug := range []string{"old", "middle", "new"} {
		p := &models.Product{Slug: slug, Price: decimal.NewFromInt(1), CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.CreateProduct(ctx, p))
	}

	all, err := s.ListProducts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "middle", "old"}, []string{all[0].Slug, all[1].Slug, all[2].Slug})

	top, err := s.ListProducts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
	assert.Equal(t, "new", top[0].Slug)
}

func TestDuplicateSlugConflicts(t *testing.T) {
	s := New()
	seedProduct(t, s, "widget", "1.00")

	err := s.CreateProduct(context.Background(), &models.Product{Slug: "widget"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestOrderItemPriceIsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := seedUser(t, s)
	p := seedProduct(t, s, "widget", "19.99")

	order := &models.Order{
		UserID: u.ID,
		Items:  []models.OrderItem{{ProductID: p.ID, Quantity: 2, Price: p.Price}},
	}
	require.NoError(t, s.CreateOrder(ctx, order))

	require.NoError(t, s.UpdateProductPrice(ctx, p.ID, decimal.RequireFromString("25.00")))

	got, err := s.OrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "19.99", got.Items[0].Price.StringFixed(2))

	current, err := s.ProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", current.Price.StringFixed(2))
}

func TestCreateOrderIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := seedUser(t, s)
	p := seedProduct(t, s, "widget", "5.00")

	order := &models.Order{
		UserID: u.ID,
		Items: []models.OrderItem{
			{ProductID: p.ID, Quantity: 1, Price: p.Price},
			{ProductID: "missing", Quantity: 1, Price: p.Price},
		},
	}
	err := s.CreateOrder(ctx, order)
	require.ErrorIs(t, err, models.ErrNotFound)

	orders, err := s.FindRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestDeleteReferencedProductConflicts(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := seedUser(t, s)
	p := seedProduct(t, s, "widget", "5.00")
	free := seedProduct(t, s, "gadget", "7.00")

	require.NoError(t, s.CreateOrder(ctx, &models.Order{
		UserID: u.ID,
		Items:  []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: p.Price}},
	}))

	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), models.ErrConflict)
	assert.NoError(t, s.DeleteProduct(ctx, free.ID))

	_, err := s.ProductByID(ctx, free.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := &models.Category{Name: "Books", Slug: "books"}
	require.NoError(t, s.CreateCategory(ctx, c))

	p := &models.Product{Slug: "novel", Price: decimal.NewFromInt(10), CategoryID: &c.ID}
	require.NoError(t, s.CreateProduct(ctx, p))

	require.NoError(t, s.DeleteCategory(ctx, c.ID))

	got, err := s.ProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestCreateUserConflict(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s)

	err := s.CreateUser(ctx, &models.User{Username: "ada@example.com", Email: "ada@example.com"}, nil)
	assert.ErrorIs(t, err, models.ErrConflict)

	exists, err := s.EmailExists(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPaymentWithoutOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := seedUser(t, s)

	p := &models.Payment{
		UserID:        u.ID,
		ExternalID:    "cs_test_123",
		Amount:        decimal.RequireFromString("39.98"),
		Status:        models.PaymentStatusPending,
		PaymentMethod: models.PaymentMethodOnline,
	}
	require.NoError(t, s.CreatePayment(ctx, p))

	got, err := s.PaymentByExternalID(ctx, "cs_test_123")
	require.NoError(t, err)
	assert.Nil(t, got.OrderID)
	assert.False(t, got.Timestamp.IsZero())
}
