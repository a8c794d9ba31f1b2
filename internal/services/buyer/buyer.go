// Package buyer implements the purchase orchestrator: one Run loads
// the ledger, quotes the market, sizes the order from the fiat budget,
// executes (or simulates) a market buy and persists the updated
// ledger. Each run is a linear sequence of blocking steps, terminal on
// the first unrecoverable failure.
package buyer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
	"github.com/dannywillems/zcash-dca-bot/internal/services/gateway"
	"github.com/dannywillems/zcash-dca-bot/internal/storage/journal"
	"github.com/dannywillems/zcash-dca-bot/pkg/retrier"
)

// Stage errors. Callers classify a failed run with errors.Is: every
// class except ErrUntrackedFunds means no funds moved.
var (
	// ErrQuoteUnavailable quote retrieval failed after the retry budget.
	ErrQuoteUnavailable = errors.New("quote unavailable")
	// ErrBelowMinimumOrder the sized quantity is under the exchange minimum.
	ErrBelowMinimumOrder = errors.New("order below minimum size")
	// ErrOrderFailed order submission failed; never retried to avoid
	// double-spending.
	ErrOrderFailed = errors.New("order failed")
	// ErrUntrackedFunds a real order filled but the ledger write
	// failed: money moved and the ledger may not reflect it. The most
	// severe failure class; the report carries the raw fill so a
	// human can reconcile manually.
	ErrUntrackedFunds = errors.New("funds at risk: order filled but ledger not persisted")
)

type ledgerStore interface {
	Load() (*domain.Ledger, error)
	Save(ledger *domain.Ledger) error
}

type orderJournal interface {
	Prepare(pair domain.Pair, quantity, price decimal.Decimal, at time.Time) (*journal.Intent, error)
	MarkFilled(intent *journal.Intent, filledQuantity, filledPrice decimal.Decimal, orderID string) error
	MarkDone(intent *journal.Intent) error
	MarkFailed(intent *journal.Intent, cause error) error
}

// Report is the outcome of a successful (or funds-at-risk) run.
type Report struct {
	Purchase domain.Purchase
	Stats    domain.Statistics
	DryRun   bool
	// Fill raw exchange fill, set whenever a real order executed.
	Fill *gateway.Fill
}

// Buyer orchestrates one recurring purchase.
type Buyer struct {
	pair        domain.Pair
	budget      domain.FiatAmount
	minQuantity domain.AssetQuantity
	dryRun      bool
	gateway     gateway.Gateway
	store       ledgerStore
	journal     orderJournal
	retrier     *retrier.Retrier
	l           *zap.Logger
}

// New constructs a Buyer. The journal may be nil for dry-run-only
// setups; a nil retrier gets the default quote retry policy.
func New(l *zap.Logger, pair domain.Pair, budget domain.FiatAmount, minQuantity domain.AssetQuantity,
	dryRun bool, gw gateway.Gateway, store ledgerStore, jrnl orderJournal, r *retrier.Retrier) (*Buyer, error) {

	if l == nil {
		l = zap.NewNop()
	}
	if gw == nil {
		return nil, errors.New("gateway is required")
	}
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	if budget.Unit() != pair.To {
		return nil, errors.Wrapf(domain.ErrUnitMismatch, "budget unit %s does not match pair %s", budget.Unit(), pair.String())
	}
	if budget.IsZero() {
		return nil, errors.Wrap(domain.ErrInvalidAmount, "budget must be greater than zero")
	}
	if !dryRun && jrnl == nil {
		return nil, errors.New("order journal is required for live runs")
	}
	if r == nil {
		r = retrier.New()
	}

	return &Buyer{
		pair:        pair,
		budget:      budget.Truncate(),
		minQuantity: minQuantity,
		dryRun:      dryRun,
		gateway:     gw,
		store:       store,
		journal:     jrnl,
		retrier:     r,
		l:           l,
	}, nil
}

// Run performs one purchase cycle and returns the run report. On
// ErrUntrackedFunds the report is returned alongside the error so the
// caller can surface the fill details.
func (b *Buyer) Run(ctx context.Context) (*Report, error) {
	ledger, err := b.store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load ledger")
	}

	price, err := b.fetchQuote(ctx)
	if err != nil {
		return nil, err
	}
	b.l.Info("quote received",
		zap.String("pair", b.pair.String()),
		zap.String("price", price.String()))

	quantity, err := b.budget.DivPrice(price, b.pair.From)
	if err != nil {
		return nil, errors.Wrap(err, "size order")
	}
	if below, err := b.belowMinimum(quantity); err != nil {
		return nil, err
	} else if below {
		return nil, errors.Wrapf(ErrBelowMinimumOrder,
			"sized %s %s, exchange minimum is %s", quantity.String(), quantity.Unit(), b.minQuantity.String())
	}

	purchase, fill, intent, err := b.execute(ctx, price, quantity)
	if err != nil {
		return nil, err
	}

	return b.persist(ledger, purchase, fill, intent)
}

// fetchQuote asks the gateway for the current unit price, retrying
// transient failures per the configured policy.
func (b *Buyer) fetchQuote(ctx context.Context) (domain.FiatAmount, error) {
	value, err := retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return b.gateway.GetQuote(ctx, b.pair)
	})
	if err != nil {
		return domain.FiatAmount{}, errors.Wrapf(ErrQuoteUnavailable,
			"pair %s after %d attempts: %v", b.pair.String(), b.retrier.MaxAttempts(), err)
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return domain.FiatAmount{}, errors.Wrapf(ErrQuoteUnavailable,
			"pair %s: non-positive quote %s", b.pair.String(), value.String())
	}

	price, err := domain.NewFiatAmount(value.RoundFloor(domain.PricePrecision), b.pair.To)
	if err != nil {
		return domain.FiatAmount{}, errors.Wrapf(ErrQuoteUnavailable, "pair %s: %v", b.pair.String(), err)
	}
	return price, nil
}

func (b *Buyer) belowMinimum(quantity domain.AssetQuantity) (bool, error) {
	if b.minQuantity.IsZero() {
		return false, nil
	}
	cmp, err := quantity.Cmp(b.minQuantity)
	if err != nil {
		return false, errors.Wrap(err, "minimum order check")
	}
	return cmp < 0, nil
}

// execute places the order or synthesizes a dry-run purchase. Real
// orders are journaled before submission and submitted exactly once.
func (b *Buyer) execute(ctx context.Context, price domain.FiatAmount, quantity domain.AssetQuantity) (domain.Purchase, *gateway.Fill, *journal.Intent, error) {
	if b.dryRun {
		purchase, err := domain.NewPurchase(b.budget, quantity, price, true, "")
		if err != nil {
			return domain.Purchase{}, nil, nil, errors.Wrap(err, "build dry-run purchase")
		}
		b.l.Info("dry run, order not submitted",
			zap.String("pair", b.pair.String()),
			zap.String("quantity", quantity.String()),
			zap.String("price", price.String()))
		return purchase, nil, nil, nil
	}

	intent, err := b.journal.Prepare(b.pair, quantity.Value(), price.Value(), time.Now().UTC())
	if err != nil {
		return domain.Purchase{}, nil, nil, errors.Wrap(err, "journal order intent")
	}

	fill, err := b.gateway.PlaceMarketOrder(ctx, b.pair, quantity.Value(), intent.ID)
	if err != nil {
		if markErr := b.journal.MarkFailed(intent, err); markErr != nil {
			b.l.Error("failed to mark order intent failed", zap.Error(markErr), zap.String("intent_id", intent.ID))
		}
		return domain.Purchase{}, nil, nil, errors.Wrapf(ErrOrderFailed,
			"pair %s quantity %s: %v", b.pair.String(), quantity.String(), err)
	}

	if err := b.journal.MarkFilled(intent, fill.Quantity, fill.Price, fill.OrderID); err != nil {
		b.l.Error("failed to record fill on order intent", zap.Error(err), zap.String("intent_id", intent.ID))
	}

	purchase, err := b.purchaseFromFill(fill)
	if err != nil {
		// funds moved; surface with the fill attached
		return domain.Purchase{}, &fill, intent, errors.Wrapf(ErrUntrackedFunds,
			"fill quantity=%s price=%s order_id=%s: %v",
			fill.Quantity.String(), fill.Price.String(), fill.OrderID, err)
	}

	return purchase, &fill, intent, nil
}

// persist records the purchase and writes the ledger. A write failure
// after a real fill is the funds-at-risk case and is reported with the
// raw fill; the journal intent is left pending for reconciliation.
func (b *Buyer) persist(ledger *domain.Ledger, purchase domain.Purchase, fill *gateway.Fill, intent *journal.Intent) (*Report, error) {
	if err := ledger.Record(purchase); err != nil {
		if fill != nil {
			return b.fundsAtRisk(ledger, purchase, fill, err)
		}
		return nil, errors.Wrap(err, "record purchase")
	}

	if err := b.store.Save(ledger); err != nil {
		if fill != nil {
			return b.fundsAtRisk(ledger, purchase, fill, err)
		}
		return nil, errors.Wrap(err, "save ledger")
	}

	if intent != nil {
		if err := b.journal.MarkDone(intent); err != nil {
			b.l.Error("failed to mark order intent done", zap.Error(err), zap.String("intent_id", intent.ID))
		}
	}

	b.l.Info("purchase recorded",
		zap.String("pair", b.pair.String()),
		zap.Bool("dry_run", purchase.DryRun),
		zap.String("quantity", purchase.Quantity.String()),
		zap.String("spent", purchase.Spent.String()),
		zap.String("total_quantity", ledger.TotalQuantity.String()))

	return &Report{
		Purchase: purchase,
		Stats:    ledger.Statistics(),
		DryRun:   purchase.DryRun,
		Fill:     fill,
	}, nil
}

func (b *Buyer) fundsAtRisk(ledger *domain.Ledger, purchase domain.Purchase, fill *gateway.Fill, cause error) (*Report, error) {
	b.l.Error("ORDER FILLED BUT LEDGER NOT PERSISTED, manual reconciliation required",
		zap.String("pair", b.pair.String()),
		zap.String("filled_quantity", fill.Quantity.String()),
		zap.String("filled_price", fill.Price.String()),
		zap.String("order_id", fill.OrderID),
		zap.Error(cause))

	report := &Report{
		Purchase: purchase,
		Stats:    ledger.Statistics(),
		Fill:     fill,
	}
	return report, errors.Wrapf(ErrUntrackedFunds,
		"fill quantity=%s price=%s order_id=%s: %v",
		fill.Quantity.String(), fill.Price.String(), fill.OrderID, cause)
}

// purchaseFromFill builds the ledger record from the confirmed fill,
// not the pre-trade estimate.
func (b *Buyer) purchaseFromFill(fill gateway.Fill) (domain.Purchase, error) {
	quantity, err := domain.NewAssetQuantity(fill.Quantity, b.pair.From)
	if err != nil {
		return domain.Purchase{}, errors.Wrap(err, "fill quantity")
	}
	fillPrice, err := domain.NewFiatAmount(fill.Price, b.pair.To)
	if err != nil {
		return domain.Purchase{}, errors.Wrap(err, "fill price")
	}
	spent, err := domain.NewFiatAmount(fill.Price.Mul(fill.Quantity).RoundFloor(domain.PricePrecision), b.pair.To)
	if err != nil {
		return domain.Purchase{}, errors.Wrap(err, "fill cost")
	}

	return domain.NewPurchase(spent, quantity, fillPrice, false, fill.OrderID)
}
