// Package config maps environment variables onto the typed server configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds every runtime setting of the rewards server.
type Config struct {
	// --- HTTP ---
	HTTPAddr          string `envconfig:"HTTP_ADDR" default:":5200"`
	AllowedOrigins    string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	AuthRatePerMinute int    `envconfig:"AUTH_RATE_PER_MINUTE" default:"20"`
	MetricsToken      string `envconfig:"METRICS_TOKEN"`

	// --- Database ---
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`

	// --- Auth ---
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL        time.Duration `envconfig:"JWT_TTL" default:"720h"`
	AdminLogin    string        `envconfig:"ADMIN_LOGIN"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD"`

	// --- Application ---
	LogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`

	// --- Rewards / ledger ---
	CollectionWallet string          `envconfig:"COLLECTION_WALLET" default:"gLxo79237ALFOBQdmoq"`
	MinDeposit       decimal.Decimal `envconfig:"MIN_DEPOSIT" default:"1000"`
	MinWithdrawal    decimal.Decimal `envconfig:"MIN_WITHDRAWAL" default:"250"`
	OrderOfferTTL    time.Duration   `envconfig:"ORDER_OFFER_TTL" default:"10m"`

	// --- Object storage (Cloudflare R2), optional ---
	CloudflareAccountID string `envconfig:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `envconfig:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `envconfig:"R2_ACCESS_KEY_SECRET"`
	R2Bucket            string `envconfig:"R2_BUCKET_NAME"`
	CDNBaseURL          string `envconfig:"CDN_BASE_URL"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.MinDeposit.IsNegative() || c.MinWithdrawal.IsNegative() {
		return fmt.Errorf("MIN_DEPOSIT and MIN_WITHDRAWAL must not be negative")
	}
	if c.OrderOfferTTL <= 0 {
		return fmt.Errorf("ORDER_OFFER_TTL must be > 0")
	}
	if c.AuthRatePerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE must be > 0")
	}
	if (c.AdminLogin == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_LOGIN and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// Origins returns ALLOWED_ORIGINS trimmed and re-joined the way the CORS middleware expects.
func (c *Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}
