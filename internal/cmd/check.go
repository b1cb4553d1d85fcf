package cmd

import (
	"context"
	"fmt"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/spf13/cobra"
)

var (
	showLast  int
	showItems bool
)

var listOrdersCmd = &cobra.Command{
	Use:   "list-orders",
	Short: "List the most recent orders",
	Long: `Print the most recent orders with their payment method, status and
totals. Useful to confirm that checkouts are being persisted.`,
	RunE: listOrders,
}

func init() {
	rootCmd.AddCommand(listOrdersCmd)

	listOrdersCmd.Flags().IntVar(&showLast, "last", 10, "Number of recent orders to show")
	listOrdersCmd.Flags().BoolVar(&showItems, "show-items", false, "Show the items of each order")
}

func listOrders(cmd *cobra.Command, args []string) error {
	fmt.Printf("🔍 Checking last %d orders...\n", showLast)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, &cfg.DB)
	if err != nil {
		return err
	}
	defer closeStore()

	orders, err := store.FindRecent(ctx, showLast)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	if len(orders) == 0 {
		fmt.Println("📭 No orders yet")
		return nil
	}

	fmt.Printf("📊 Found %d orders:\n\n", len(orders))
	for i, o := range orders {
		printOrder(i+1, o)
	}
	return nil
}

func printOrder(n int, o models.Order) {
	fmt.Printf("%d. %s  [%s]\n", n, o.ID, o.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("   👤 %s  📞 %s\n", o.FullName, o.Phone)
	fmt.Printf("   💳 %s / %s  💰 %s (fee %s)\n",
		o.PaymentMethod, o.PaymentStatus, o.TotalAmount.StringFixed(2), o.CODFee.StringFixed(2))
	if showItems {
		for _, it := range o.Items {
			fmt.Printf("      • %s × %d @ %s = %s\n", it.ProductID, it.Quantity, it.Price.StringFixed(2), it.Subtotal().StringFixed(2))
		}
	}
	fmt.Println()
}
