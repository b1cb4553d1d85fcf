package cmd

import (
	"context"
	"fmt"

	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/database"
	"github.com/matthieukhl/storefront/internal/repository"
	"github.com/matthieukhl/storefront/internal/repository/memory"
	"github.com/matthieukhl/storefront/internal/repository/sqlrepo"
)

// openStore builds the configured backend. The memory backend starts with
// the sample catalog so the server is usable without a database.
func openStore(ctx context.Context, cfg *config.DBConfig) (repository.Store, func(), error) {
	if cfg.Driver == "memory" {
		store := memory.New()
		if _, err := catalog.Seed(ctx, store); err != nil {
			return nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		return store, func() {}, nil
	}

	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return sqlrepo.New(db), func() { db.Close() }, nil
}
