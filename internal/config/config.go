package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DB         DBConfig         `mapstructure:"db"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Checkout   CheckoutConfig   `mapstructure:"checkout"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Events     EventsConfig     `mapstructure:"events"`
	Revocation RevocationConfig `mapstructure:"revocation"`
}

type ServerConfig struct {
	Addr         string   `mapstructure:"addr"`
	Debug        bool     `mapstructure:"debug"`
	SecretKey    string   `mapstructure:"secret_key"`
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres or memory
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type PaymentConfig struct {
	Provider  string `mapstructure:"provider"` // stripe or mock
	SecretKey string `mapstructure:"secret_key"`
	PublicKey string `mapstructure:"public_key"`
	Currency  string `mapstructure:"currency"`
}

type StorefrontConfig struct {
	FrontendURL  string `mapstructure:"frontend_url"`
	MediaRoot    string `mapstructure:"media_root"`
	StaticRoot   string `mapstructure:"static_root"`
	ListingLimit int    `mapstructure:"listing_limit"`
}

type CheckoutConfig struct {
	CODFee           string `mapstructure:"cod_fee"`
	TrustClientPrice bool   `mapstructure:"trust_client_price"`
}

type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RevocationConfig struct {
	RedisAddr string `mapstructure:"redis_addr"`
}

// CODFeeAmount parses the configured cash-on-delivery surcharge.
func (c CheckoutConfig) CODFeeAmount() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.CODFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid checkout.cod_fee %q: %w", c.CODFee, err)
	}
	return fee, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debug", true)
	v.SetDefault("server.secret_key", "dev-secret-key")
	v.SetDefault("server.allowed_hosts", []string{})

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "storefront:storefront@tcp(localhost:3306)/storefront?parseTime=true")
	v.SetDefault("db.maxOpenConns", 10)

	v.SetDefault("payment.provider", "stripe")
	v.SetDefault("payment.currency", "inr")

	v.SetDefault("storefront.frontend_url", "http://127.0.0.1:8000")
	v.SetDefault("storefront.media_root", "media")
	v.SetDefault("storefront.static_root", "static")
	v.SetDefault("storefront.listing_limit", 100)

	v.SetDefault("checkout.cod_fee", "30.00")
	v.SetDefault("checkout.trust_client_price", false)

	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "sessionid")

	v.SetDefault("events.topic", "orders.placed")
}

// LoadConfig loads configuration from config.yaml and environment variables
func LoadConfig() (*Config, error) {
	// A local .env is optional and never overrides the real environment.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.storefront/")
	v.AddConfigPath("/etc/storefront/")

	// STOREFRONT_DB_DSN overrides db.dsn and so on
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for deployments that already export them.
	_ = v.BindEnv("payment.secret_key", "STOREFRONT_PAYMENT_SECRET_KEY", "STRIPE_SECRET_KEY")
	_ = v.BindEnv("payment.public_key", "STOREFRONT_PAYMENT_PUBLIC_KEY", "STRIPE_PUBLIC_KEY")
	_ = v.BindEnv("storefront.frontend_url", "STOREFRONT_STOREFRONT_FRONTEND_URL", "FRONTEND_URL")
	_ = v.BindEnv("db.dsn", "STOREFRONT_DB_DSN", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported db driver: %s", c.DB.Driver)
	}
	if _, err := c.Checkout.CODFeeAmount(); err != nil {
		return err
	}
	if c.Server.SecretKey == "" {
		return errors.New("server.secret_key must not be empty")
	}
	c.Storefront.FrontendURL = strings.TrimRight(c.Storefront.FrontendURL, "/")
	return nil
}
