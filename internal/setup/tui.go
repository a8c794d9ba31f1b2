// Package setup provides an interactive terminal wizard that writes a
// config.yaml for the bot.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

type yamlConfig struct {
	Platform           string        `yaml:"platform"`
	Pair               string        `yaml:"pair"`
	LedgerPath         string        `yaml:"ledger_path"`
	JournalDir         string        `yaml:"journal_dir"`
	MinOrderQuantity   string        `yaml:"min_order_quantity"`
	QuoteRetryAttempts int           `yaml:"quote_retry_attempts"`
	QuoteRetryBackoff  time.Duration `yaml:"quote_retry_backoff"`
	SimulatePrice      string        `yaml:"simulate_price,omitempty"`
}

// RunTUI launches the configuration wizard and writes config.yaml.
func RunTUI() error {
	var (
		platform      string
		pairStr       string
		ledgerPath    string
		minQtyStr     string
		attemptsStr   string
		simulatePrice string
		confirm       bool
	)

	pairStr = "ZEC_EUR"
	ledgerPath = "zcash_accumulation.json"
	minQtyStr = "0.0001"
	attemptsStr = "3"
	simulatePrice = "30"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("DCA BOT CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Recurring purchases, exact accounting.\n"))

	fmt.Println(stepStyle.Render("STEP 1: PLATFORM"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Simulate (no real orders)", "simulate"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 2: MARKET"))
	group := huh.NewGroup(
		huh.NewInput().
			Title("Trading pair (ASSET_FIAT)").
			Value(&pairStr).
			Validate(func(s string) error {
				_, err := domain.PairFromString(s)
				return err
			}),
		huh.NewInput().
			Title("Minimum order quantity").
			Value(&minQtyStr).
			Validate(validateDecimal),
		huh.NewInput().
			Title("Quote retry attempts").
			Value(&attemptsStr).
			Validate(func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 {
					return fmt.Errorf("must be a positive integer")
				}
				return nil
			}),
	)
	if err := huh.NewForm(group).Run(); err != nil {
		return err
	}

	if platform == "simulate" {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Simulated unit price").
					Value(&simulatePrice).
					Validate(validateDecimal),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	fmt.Println(stepStyle.Render("STEP 3: STORAGE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ledger file path").
				Value(&ledgerPath),
		),
	).Run()
	if err != nil {
		return err
	}

	attempts, _ := strconv.Atoi(attemptsStr)
	cfg := yamlConfig{
		Platform:           platform,
		Pair:               pairStr,
		LedgerPath:         ledgerPath,
		JournalDir:         "./wal/orders",
		MinOrderQuantity:   minQtyStr,
		QuoteRetryAttempts: attempts,
		QuoteRetryBackoff:  time.Second,
	}
	if platform == "simulate" {
		cfg.SimulatePrice = simulatePrice
	}

	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	fmt.Println(stepStyle.Render("REVIEW"))
	fmt.Println(string(payload))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write config.yaml?").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Aborted, nothing written.")
		return nil
	}

	if err := os.WriteFile("config.yaml", payload, 0o644); err != nil {
		return fmt.Errorf("write config.yaml: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("config.yaml written."))
	return nil
}

func validateDecimal(s string) error {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}
