package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/events"
	"github.com/spf13/cobra"
)

var watchGroup string

var watchCmd = &cobra.Command{
	Use:   "watch-orders",
	Short: "Follow order events from Kafka",
	Long: `Consume the configured order topic and print every placed order as it
arrives. Stop with Ctrl+C.`,
	RunE: watchOrders,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchGroup, "group", "storefront-cli", "Kafka consumer group id")
}

func watchOrders(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(cfg.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers is empty; nothing to watch")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := events.NewKafkaBroker(cfg.Events.Brokers)
	defer broker.Close()

	fmt.Printf("👀 Watching %s (group %s)...\n", cfg.Events.Topic, watchGroup)
	followOrders(ctx, broker, cfg.Events.Topic, watchGroup, cmd.OutOrStdout())
	return nil
}

// followOrders prints one line per OrderPlaced event until ctx is done.
func followOrders(ctx context.Context, sub events.Subscriber, topic, group string, out io.Writer) {
	sub.Consume(ctx, topic, group, func(ctx context.Context, payload []byte) error {
		var ev events.OrderPlaced
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		fmt.Fprintf(out, "🛒 %s  %s  %s  %d items  %s\n",
			ev.PlacedAt.Format("15:04:05"), ev.OrderID, ev.PaymentMethod, ev.ItemCount, ev.TotalAmount)
		return nil
	})
}
