package catalog

import (
	"context"
	"testing"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyCatalogListsAsEmptySlices(t *testing.T) {
	svc := NewService(memory.New())

	products, err := svc.ListProducts(context.Background(), 100)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
}

func TestLookupBySlugOrID(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := &models.Product{Title: "Widget", Slug: "widget", Price: decimal.RequireFromString("19.99")}
	require.NoError(t, store.CreateProduct(ctx, p))
	svc := NewService(store)

	bySlug, err := svc.Lookup(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)

	byID, err := svc.Lookup(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "widget", byID.Slug)

	_, err = svc.Lookup(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	n, err := Seed(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, len(sampleProducts), n)

	n, err = Seed(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, n)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(sampleCategories))

	mouse, err := store.ProductBySlug(ctx, "wireless-mouse")
	require.NoError(t, err)
	require.NotNil(t, mouse.CategoryID)
	assert.Equal(t, "799.00", mouse.Price.StringFixed(2))
}
