// Package internal wires configuration and exchange clients into the
// purchase orchestrator and exposes the bot's two operations: buy and
// stats.
package internal

import (
	"context"
	"fmt"

	binance "github.com/adshao/go-binance/v2"
	"github.com/charmbracelet/lipgloss"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dannywillems/zcash-dca-bot/config"
	"github.com/dannywillems/zcash-dca-bot/internal/domain"
	"github.com/dannywillems/zcash-dca-bot/internal/services/buyer"
	"github.com/dannywillems/zcash-dca-bot/internal/services/gateway"
	"github.com/dannywillems/zcash-dca-bot/internal/services/poster"
	"github.com/dannywillems/zcash-dca-bot/internal/storage/journal"
	"github.com/dannywillems/zcash-dca-bot/internal/storage/ledgerstore"
	"github.com/dannywillems/zcash-dca-bot/pkg/retrier"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"})
	warnStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("196"))
)

// DCABot is a configured bot instance.
type DCABot struct {
	cfg     config.Config
	gateway gateway.Gateway
	store   *ledgerstore.Store
	l       *zap.Logger
}

// NewDCABot builds a bot from a config and a platform client. The
// client type selects the gateway adapter; nil is only valid for the
// simulate platform.
func NewDCABot(cfg config.Config, client any, l *zap.Logger) (*DCABot, error) {
	if l == nil {
		l = zap.NewNop()
	}

	gw, err := newGateway(cfg, client, l)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create exchange gateway")
	}

	return &DCABot{
		cfg:     cfg,
		gateway: gw,
		store:   ledgerstore.NewStore(cfg.LedgerPath, cfg.Pair),
		l:       l,
	}, nil
}

func newGateway(cfg config.Config, client any, l *zap.Logger) (gateway.Gateway, error) {
	switch c := client.(type) {
	case *binance.Client:
		return gateway.NewBinanceGateway(c), nil
	case *bybit.Client:
		return gateway.NewBybitGateway(c), nil
	case nil:
		if cfg.Platform != "simulate" {
			return nil, fmt.Errorf("platform %s requires an exchange client", cfg.Platform)
		}
		return gateway.NewSimulateGateway(cfg.SimulatePrice, l)
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}

// Buy runs one purchase cycle for the given fiat amount.
func (b *DCABot) Buy(ctx context.Context, amount string, dryRun, post bool) error {
	budget, err := domain.FiatAmountFromString(amount, b.cfg.Pair.To)
	if err != nil {
		return errors.Wrapf(err, "invalid purchase amount %q", amount)
	}

	var jrnl *journal.Journal
	if !dryRun {
		jrnl, err = journal.Open(b.cfg.JournalDir, b.cfg.Pair)
		if err != nil {
			return errors.Wrap(err, "open order journal")
		}
		defer jrnl.Close()

		if pending := jrnl.Pending(); len(pending) > 0 {
			for _, intent := range pending {
				b.l.Warn("unreconciled order intent from a previous run",
					zap.String("intent_id", intent.ID),
					zap.String("quantity", intent.Quantity.String()),
					zap.String("order_id", intent.OrderID),
					zap.Time("time", intent.Time))
			}
		}
	}

	minQuantity, err := domain.NewAssetQuantity(b.cfg.MinOrderQuantity, b.cfg.Pair.From)
	if err != nil {
		return errors.Wrap(err, "invalid minimum order quantity")
	}

	quoteRetrier := retrier.New(
		retrier.WithMaxAttempts(b.cfg.QuoteRetryAttempts),
		retrier.WithInitialInterval(b.cfg.QuoteRetryBackoff),
	)

	run, err := buyer.New(b.l, b.cfg.Pair, budget, minQuantity, dryRun, b.gateway, b.store, jrnl, quoteRetrier)
	if err != nil {
		return err
	}

	report, runErr := run.Run(ctx)
	if runErr != nil {
		if errors.Is(runErr, buyer.ErrUntrackedFunds) && report != nil && report.Fill != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf(
				"FUNDS MOVED BUT LEDGER NOT UPDATED\nfilled: %s %s at %s %s, order id %s\nreconcile %s manually",
				report.Fill.Quantity.String(), b.cfg.Pair.From,
				report.Fill.Price.String(), b.cfg.Pair.To,
				report.Fill.OrderID, b.store.Path())))
		}
		return runErr
	}

	b.printReport(report)

	if post {
		text := poster.GeneratePost(report.Purchase, report.Stats.TotalQuantity)
		poster.Display(text)
	}

	return nil
}

func (b *DCABot) printReport(report *buyer.Report) {
	mode := "LIVE"
	if report.DryRun {
		mode = "DRY RUN (simulation)"
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s purchase complete", b.cfg.Pair.String())))
	fmt.Printf("Mode:    %s\n", mode)
	fmt.Printf("Bought:  %s %s\n", report.Purchase.Quantity.String(), report.Purchase.Quantity.Unit())
	fmt.Printf("Spent:   %s %s\n", report.Purchase.Spent.String(), report.Purchase.Spent.Unit())
	fmt.Printf("Price:   %s %s per %s\n", report.Purchase.UnitPrice.String(), report.Purchase.UnitPrice.Unit(), b.cfg.Pair.From)
	if report.Purchase.OrderID != "" {
		fmt.Printf("Order:   %s\n", report.Purchase.OrderID)
	}
	fmt.Printf("Total:   %s %s for %s %s\n",
		report.Stats.TotalQuantity.String(), report.Stats.TotalQuantity.Unit(),
		report.Stats.TotalSpent.String(), report.Stats.TotalSpent.Unit())
}

// Stats prints the accumulated ledger statistics.
func (b *DCABot) Stats() error {
	ledger, err := b.store.Load()
	if err != nil {
		return errors.Wrap(err, "load ledger")
	}

	stats := ledger.Statistics()

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s accumulation statistics", b.cfg.Pair.String())))
	fmt.Printf("Total %s accumulated: %s\n", b.cfg.Pair.From, stats.TotalQuantity.String())
	fmt.Printf("Total %s spent:       %s\n", b.cfg.Pair.To, stats.TotalSpent.String())
	if stats.HasData {
		fmt.Printf("Average price:         %s %s per %s\n", stats.AveragePrice.String(), b.cfg.Pair.To, b.cfg.Pair.From)
	}
	fmt.Printf("Number of purchases:   %d\n", stats.PurchaseCount)
	if stats.PurchaseCount > 0 {
		fmt.Printf("First purchase:        %s\n", stats.FirstPurchase.Format("2006-01-02 15:04"))
		fmt.Printf("Last purchase:         %s\n", stats.LastPurchase.Format("2006-01-02 15:04"))
	}

	recent := ledger.Recent(5)
	if len(recent) > 0 {
		fmt.Println("\nRecent purchases:")
		for i := len(recent) - 1; i >= 0; i-- {
			p := recent[i]
			marker := ""
			if p.DryRun {
				marker = " (dry run)"
			}
			fmt.Printf("  %s: %s %s @ %s %s%s\n",
				p.Time.Format("2006-01-02"),
				p.Quantity.String(), p.Quantity.Unit(),
				p.UnitPrice.String(), p.UnitPrice.Unit(), marker)
		}
	}

	return nil
}
