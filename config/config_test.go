package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rewards")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":5200" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.JWTTTL != 720*time.Hour {
		t.Errorf("JWTTTL = %v, want 30 days", cfg.JWTTTL)
	}
	if cfg.CollectionWallet != "gLxo79237ALFOBQdmoq" {
		t.Errorf("CollectionWallet = %q", cfg.CollectionWallet)
	}
	if cfg.MinDeposit.String() != "1000" || cfg.MinWithdrawal.String() != "250" {
		t.Errorf("minimums = %s / %s", cfg.MinDeposit, cfg.MinWithdrawal)
	}
	if cfg.OrderOfferTTL != 10*time.Minute {
		t.Errorf("OrderOfferTTL = %v", cfg.OrderOfferTTL)
	}
	if cfg.R2Enabled() {
		t.Error("R2 must be disabled without credentials")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseURL:       "postgres://localhost/rewards",
		JWTSecret:         "secret",
		JWTTTL:            time.Hour,
		OrderOfferTTL:     time.Minute,
		AuthRatePerMinute: 10,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"blank secret", func(c *Config) { c.JWTSecret = "  " }, true},
		{"negative deposit minimum", func(c *Config) { c.MinDeposit = decimal.NewFromInt(-1) }, true},
		{"zero offer ttl", func(c *Config) { c.OrderOfferTTL = 0 }, true},
		{"admin login without password", func(c *Config) { c.AdminLogin = "root" }, true},
		{"admin pair", func(c *Config) { c.AdminLogin = "root"; c.AdminPassword = "pw" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := Config{AllowedOrigins: " https://a.example , ,https://b.example "}
	if got := cfg.Origins(); got != "https://a.example,https://b.example" {
		t.Fatalf("Origins() = %q", got)
	}
}

func TestLoadDecimalMinimums(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rewards")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MIN_WITHDRAWAL", "250.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.MinWithdrawal.Equal(decimal.RequireFromString("250.1")) {
		t.Fatalf("MinWithdrawal = %s", cfg.MinWithdrawal)
	}

	t.Setenv("MIN_DEPOSIT", "ten")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric MIN_DEPOSIT")
	}
}
