package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - catalog, cart and checkout server",
	Long: `Storefront serves a product catalog with a cart, cash-on-delivery and
card checkout, and customer accounts.

Run it as a server with "serve", or use the CLI commands to prepare the
database and inspect recent orders.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
