package cmd

import (
	"context"
	"fmt"

	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/database"
	"github.com/matthieukhl/storefront/internal/repository/sqlrepo"
	"github.com/spf13/cobra"
)

var (
	dropFirst bool
	cleanData bool
	skipData  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup-db",
	Short: "Create the storefront schema and sample catalog",
	Long: `Creates the storefront tables (categories, products, users,
user_profiles, orders, order_items, payments) and loads a small sample
catalog so the shop has something to show.`,
	RunE: setupDatabase,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing storefront tables before creating")
	setupCmd.Flags().BoolVar(&cleanData, "clean", false, "Delete all rows from the storefront tables, keeping the schema")
	setupCmd.Flags().BoolVar(&skipData, "schema-only", false, "Create schema only, skip the sample catalog")
}

func setupDatabase(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Setting up storefront database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DB.Driver == "memory" {
		return fmt.Errorf("setup-db needs a mysql or postgres driver, got %q", cfg.DB.Driver)
	}

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Printf("📋 Creating %s schema...\n", db.Dialect)
	if err := db.SetupSchema(ctx); err != nil {
		return fmt.Errorf("failed to setup schema: %w", err)
	}

	if cleanData {
		fmt.Println("🧹 Removing existing rows...")
		if err := db.CleanupData(ctx); err != nil {
			return fmt.Errorf("failed to clean data: %w", err)
		}
	}

	if !skipData {
		fmt.Println("📦 Loading sample catalog...")
		n, err := catalog.Seed(ctx, sqlrepo.New(db))
		if err != nil {
			return fmt.Errorf("failed to load sample catalog: %w", err)
		}
		fmt.Printf("   ✓ %d products created\n", n)
	}

	fmt.Println("✅ Database setup complete!")
	return nil
}
