// Package config loads bot configuration from a YAML file with sane
// defaults for everything not set.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

// Config is the resolved bot configuration.
type Config struct {
	Platform           string
	Pair               domain.Pair
	LedgerPath         string
	JournalDir         string
	MinOrderQuantity   decimal.Decimal
	QuoteRetryAttempts int
	QuoteRetryBackoff  time.Duration
	// SimulatePrice fixed quote used by the simulate platform.
	SimulatePrice decimal.Decimal
}

type configTmp struct {
	Platform           string        `yaml:"platform,omitempty"`
	Pair               string        `yaml:"pair,omitempty"`
	LedgerPath         string        `yaml:"ledger_path,omitempty"`
	JournalDir         string        `yaml:"journal_dir,omitempty"`
	MinOrderQuantity   string        `yaml:"min_order_quantity,omitempty"`
	QuoteRetryAttempts int           `yaml:"quote_retry_attempts,omitempty"`
	QuoteRetryBackoff  time.Duration `yaml:"quote_retry_backoff,omitempty"`
	SimulatePrice      string        `yaml:"simulate_price,omitempty"`
}

// Default returns the configuration used when no file is present:
// Binance, ZEC_EUR, ledger next to the binary, 3 quote attempts with
// 1s initial backoff.
func Default() Config {
	return Config{
		Platform:           "binance",
		Pair:               domain.Pair{From: "ZEC", To: "EUR"},
		LedgerPath:         "zcash_accumulation.json",
		JournalDir:         "./wal/orders",
		MinOrderQuantity:   decimal.RequireFromString("0.0001"),
		QuoteRetryAttempts: 3,
		QuoteRetryBackoff:  time.Second,
		SimulatePrice:      decimal.RequireFromString("30"),
	}
}

// Load reads the YAML config at path, overlaying defaults. An empty
// path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if tmp.Platform != "" {
		cfg.Platform = tmp.Platform
	}
	switch cfg.Platform {
	case "binance", "bybit", "simulate":
	default:
		return Config{}, fmt.Errorf("unsupported platform %q (binance, bybit or simulate)", cfg.Platform)
	}

	if tmp.Pair != "" {
		pair, err := domain.PairFromString(tmp.Pair)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'pair' param in yaml config: %w", err)
		}
		cfg.Pair = pair
	}
	if tmp.LedgerPath != "" {
		cfg.LedgerPath = tmp.LedgerPath
	}
	if tmp.JournalDir != "" {
		cfg.JournalDir = tmp.JournalDir
	}
	if tmp.MinOrderQuantity != "" {
		minQty, err := decimal.NewFromString(tmp.MinOrderQuantity)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'min_order_quantity' param in yaml config (must be a decimal): %w", err)
		}
		if minQty.IsNegative() {
			return Config{}, fmt.Errorf("incorrect 'min_order_quantity' param in yaml config: must not be negative")
		}
		cfg.MinOrderQuantity = minQty
	}
	if tmp.QuoteRetryAttempts != 0 {
		if tmp.QuoteRetryAttempts < 1 {
			return Config{}, fmt.Errorf("incorrect 'quote_retry_attempts' param in yaml config: must be at least 1")
		}
		cfg.QuoteRetryAttempts = tmp.QuoteRetryAttempts
	}
	if tmp.QuoteRetryBackoff != 0 {
		cfg.QuoteRetryBackoff = tmp.QuoteRetryBackoff
	}
	if tmp.SimulatePrice != "" {
		price, err := decimal.NewFromString(tmp.SimulatePrice)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'simulate_price' param in yaml config (must be a decimal): %w", err)
		}
		if price.LessThanOrEqual(decimal.Zero) {
			return Config{}, fmt.Errorf("incorrect 'simulate_price' param in yaml config: must be positive")
		}
		cfg.SimulatePrice = price
	}

	return cfg, nil
}
