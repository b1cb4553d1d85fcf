package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/events"
	"github.com/matthieukhl/storefront/internal/payment"
	"github.com/matthieukhl/storefront/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront server",
	Long: `Start the storefront server which provides:
- JSON API for products, categories and checkout
- Server rendered storefront pages, signup and login
- Order events on the configured Kafka topic`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Storefront Starting...")

	fmt.Println("📝 Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg.Server.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🔌 Opening %s store...\n", cfg.DB.Driver)
	store, closeStore, err := openStore(ctx, &cfg.DB)
	if err != nil {
		return err
	}
	defer closeStore()
	fmt.Println("✅ Store ready")

	gateway, err := payment.NewGateway(&cfg.Payment)
	if err != nil {
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}
	slog.Info("Payment gateway configured", "provider", gateway.Name())

	publisher := events.NewPublisher(cfg.Events.Brokers)
	defer publisher.Close()

	revoker := auth.NewRevoker(cfg.Revocation.RedisAddr)
	if r, ok := revoker.(*auth.RedisRevoker); ok {
		defer r.Close()
	}
	sessions := auth.NewSessions(
		auth.NewTokens(cfg.Server.SecretKey, cfg.Auth.SessionTTL),
		revoker,
		cfg.Auth.CookieName,
		!cfg.Server.Debug,
	)

	fmt.Println("⚙️  Setting up server...")
	srv, err := server.NewServer(cfg, store, gateway, publisher, sessions)
	if err != nil {
		return fmt.Errorf("failed to set up server: %w", err)
	}

	fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	fmt.Println("👋 Server stopped")
	return nil
}
