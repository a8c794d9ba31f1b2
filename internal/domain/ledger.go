package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Ledger is the accumulation aggregate: running totals plus the
// chronological purchase history. Dry-run purchases are kept in the
// history for auditing but never counted into the totals, so the
// totals always equal the sum over real purchases only.
//
// The ledger is a process-local single-writer structure, no internal
// locking; callers must not run overlapping mutations.
type Ledger struct {
	TotalQuantity AssetQuantity
	TotalSpent    FiatAmount
	Purchases     []Purchase
}

// Statistics is a point-in-time summary of the ledger.
type Statistics struct {
	TotalQuantity AssetQuantity
	TotalSpent    FiatAmount
	// AveragePrice total spent over total quantity, truncated to
	// PricePrecision digits. Only meaningful when HasData is true.
	AveragePrice  FiatAmount
	PurchaseCount int
	// HasData false when no real purchase has been recorded yet.
	HasData       bool
	FirstPurchase time.Time
	LastPurchase  time.Time
}

// NewLedger returns an empty ledger for the given asset/fiat units.
func NewLedger(pair Pair) *Ledger {
	quantity, _ := NewAssetQuantity(decimal.Zero, pair.From)
	spent, _ := NewFiatAmount(decimal.Zero, pair.To)
	return &Ledger{
		TotalQuantity: quantity,
		TotalSpent:    spent,
		Purchases:     make([]Purchase, 0),
	}
}

// Record appends a purchase to the history and, for real purchases,
// increments both running totals. In-memory only, persistence is the
// caller's responsibility.
func (l *Ledger) Record(p Purchase) error {
	if p.DryRun {
		l.Purchases = append(l.Purchases, p)
		return nil
	}

	quantity, err := l.TotalQuantity.Add(p.Quantity)
	if err != nil {
		return errors.Wrap(err, "cannot add purchase quantity to total")
	}
	spent, err := l.TotalSpent.Add(p.Spent)
	if err != nil {
		return errors.Wrap(err, "cannot add purchase amount to total")
	}

	l.Purchases = append(l.Purchases, p)
	l.TotalQuantity = quantity
	l.TotalSpent = spent
	return nil
}

// Statistics summarizes the ledger. With an empty history (or zero
// accumulated quantity) it returns zero-valued stats with
// HasData=false instead of dividing by zero.
func (l *Ledger) Statistics() Statistics {
	stats := Statistics{
		TotalQuantity: l.TotalQuantity,
		TotalSpent:    l.TotalSpent,
		PurchaseCount: len(l.Purchases),
	}

	if len(l.Purchases) > 0 {
		stats.FirstPurchase = l.Purchases[0].Time
		stats.LastPurchase = l.Purchases[len(l.Purchases)-1].Time
	}

	if l.TotalQuantity.IsZero() {
		avg, _ := NewFiatAmount(decimal.Zero, l.TotalSpent.Unit())
		stats.AveragePrice = avg
		return stats
	}

	avgValue := l.TotalSpent.Value().Div(l.TotalQuantity.Value()).RoundFloor(PricePrecision)
	avg, _ := NewFiatAmount(avgValue, l.TotalSpent.Unit())
	stats.AveragePrice = avg
	stats.HasData = true
	return stats
}

// Recent returns the last n purchases, newest last.
func (l *Ledger) Recent(n int) []Purchase {
	if n <= 0 || len(l.Purchases) == 0 {
		return nil
	}
	if n > len(l.Purchases) {
		n = len(l.Purchases)
	}
	return l.Purchases[len(l.Purchases)-n:]
}

// SumHistory recomputes totals from the non-dry-run history. Used by
// the store to validate stored totals against the stored purchases.
func (l *Ledger) SumHistory() (AssetQuantity, FiatAmount, error) {
	quantity, _ := NewAssetQuantity(decimal.Zero, l.TotalQuantity.Unit())
	spent, _ := NewFiatAmount(decimal.Zero, l.TotalSpent.Unit())

	for _, p := range l.Purchases {
		if p.DryRun {
			continue
		}
		var err error
		quantity, err = quantity.Add(p.Quantity)
		if err != nil {
			return AssetQuantity{}, FiatAmount{}, errors.Wrap(err, "history quantity sum")
		}
		spent, err = spent.Add(p.Spent)
		if err != nil {
			return AssetQuantity{}, FiatAmount{}, errors.Wrap(err, "history spent sum")
		}
	}
	return quantity, spent, nil
}
