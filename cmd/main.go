// Command zcash-dca-bot performs recurring cryptocurrency purchases
// with exact-decimal accumulation tracking.
//
// Usage:
//
//	zcash-dca-bot buy --amount 50 [--dry-run] [--post] [--config config.yaml]
//	zcash-dca-bot stats [--config config.yaml]
//	zcash-dca-bot setup
//
// Required environment variables (a .env file is honored):
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dannywillems/zcash-dca-bot/config"
	"github.com/dannywillems/zcash-dca-bot/internal"
	"github.com/dannywillems/zcash-dca-bot/internal/clients"
	"github.com/dannywillems/zcash-dca-bot/internal/setup"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// .env is optional, real env vars win either way
	_ = godotenv.Load()

	command := os.Args[1]
	args := os.Args[2:]

	if command == "setup" {
		if err := setup.RunTUI(); err != nil {
			fmt.Fprintln(os.Stderr, "setup failed:", err)
			os.Exit(1)
		}
		return
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to yaml config")
	amount := fs.String("amount", "", "fiat amount to spend, e.g. 50.00")
	dryRun := fs.Bool("dry-run", false, "simulate without placing a real order")
	post := fs.Bool("post", false, "generate a social media post")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	client, err := platformClient(cfg)
	if err != nil {
		logger.Fatal("failed to create exchange client", zap.Error(err))
	}

	bot, err := internal.NewDCABot(cfg, client, logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	switch command {
	case "buy":
		if *amount == "" {
			fmt.Fprintln(os.Stderr, "buy requires --amount")
			os.Exit(2)
		}
		if err := bot.Buy(context.Background(), *amount, *dryRun, *post); err != nil {
			logger.Error("purchase run failed", zap.Error(err))
			os.Exit(1)
		}
	case "stats":
		if err := bot.Stats(); err != nil {
			logger.Error("stats failed", zap.Error(err))
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

// loadConfig treats a missing file at the default location as "no
// config", falling back to defaults; an explicitly broken file is an error.
func loadConfig(path string) (config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Load("")
	}
	return config.Load(path)
}

func platformClient(cfg config.Config) (any, error) {
	switch cfg.Platform {
	case "binance":
		apiKey := os.Getenv("BINANCE_API_KEY")
		apiSecret := os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET environment variables must be set")
		}
		return clients.NewBinanceClient(apiKey, apiSecret), nil
	case "bybit":
		apiKey := os.Getenv("BYBIT_API_KEY")
		apiSecret := os.Getenv("BYBIT_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, fmt.Errorf("BYBIT_API_KEY and BYBIT_API_SECRET environment variables must be set")
		}
		return clients.NewBybitClient(apiKey, apiSecret), nil
	case "simulate":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", cfg.Platform)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: zcash-dca-bot <command> [flags]

commands:
  buy    execute one DCA purchase (--amount, --dry-run, --post, --config)
  stats  print accumulation statistics (--config)
  setup  interactive configuration wizard`)
}
