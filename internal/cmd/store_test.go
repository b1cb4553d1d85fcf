package cmd

import (
	"context"
	"testing"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryStoreIsSeeded(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), &config.DBConfig{Driver: "memory"})
	require.NoError(t, err)
	defer closeStore()

	products, err := store.ListProducts(context.Background(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, products)

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, categories)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, _, err := openStore(context.Background(), &config.DBConfig{Driver: "sqlite", DSN: "x"})
	assert.Error(t, err)
}

func TestCommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "setup-db", "list-orders", "watch-orders"} {
		assert.True(t, names[want], want)
	}
}

func TestSetupFlags(t *testing.T) {
	for _, name := range []string{"drop-first", "clean", "schema-only"} {
		assert.NotNil(t, setupCmd.Flags().Lookup(name), name)
	}
}
