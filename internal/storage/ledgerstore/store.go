// Package ledgerstore persists the accumulation ledger as a JSON file.
// All monetary fields are stored as decimal strings so values survive
// the round trip without passing through binary floating point.
package ledgerstore

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

// ErrCorruptState reports a ledger file that exists but cannot be
// trusted: unparsable content or stored totals that disagree with the
// stored history. The store never repairs such a file.
var ErrCorruptState = errors.New("corrupt ledger state")

// Store reads and writes one ledger file.
type Store struct {
	path string
	pair domain.Pair
}

// NewStore creates a store for the given file path and pair.
func NewStore(path string, pair domain.Pair) *Store {
	return &Store{path: path, pair: pair}
}

// Path returns the ledger file location.
func (s *Store) Path() string { return s.path }

type storedLedger struct {
	Pair          string           `json:"pair"`
	TotalQuantity string           `json:"total_asset_quantity"`
	TotalSpent    string           `json:"total_fiat_spent"`
	Purchases     []storedPurchase `json:"purchases"`
}

type storedPurchase struct {
	Timestamp time.Time `json:"timestamp"`
	Fiat      string    `json:"fiat_amount"`
	Quantity  string    `json:"asset_quantity"`
	UnitPrice string    `json:"unit_price"`
	DryRun    bool      `json:"dry_run"`
	OrderID   *string   `json:"order_id"`
}

// Load reads the ledger from disk. A missing file yields an empty
// ledger. An existing file that cannot be parsed, or whose totals do
// not equal the sum over its non-dry-run history, fails with
// ErrCorruptState: the caller aborts and a human reconciles the file.
func (s *Store) Load() (*domain.Ledger, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewLedger(s.pair), nil
		}
		return nil, errors.Wrap(err, "read ledger file")
	}

	var stored storedLedger
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, errors.Wrapf(ErrCorruptState, "decode ledger file %s: %v", s.path, err)
	}

	ledger, err := s.toLedger(stored)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptState, "ledger file %s: %v", s.path, err)
	}

	sumQuantity, sumSpent, err := ledger.SumHistory()
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptState, "ledger file %s: %v", s.path, err)
	}
	if !ledger.TotalQuantity.Value().Equal(sumQuantity.Value()) || !ledger.TotalSpent.Value().Equal(sumSpent.Value()) {
		return nil, errors.Wrapf(ErrCorruptState,
			"stored totals (%s %s, %s %s) do not match history sum (%s, %s)",
			ledger.TotalQuantity.String(), ledger.TotalQuantity.Unit(),
			ledger.TotalSpent.String(), ledger.TotalSpent.Unit(),
			sumQuantity.String(), sumSpent.String())
	}

	return ledger, nil
}

// Save writes the full ledger to disk atomically: the payload goes to
// a temp file first and replaces the previous file via rename, so a
// crash mid-write never leaves a half-written ledger in place.
func (s *Store) Save(ledger *domain.Ledger) error {
	stored := storedLedger{
		Pair:          s.pair.String(),
		TotalQuantity: ledger.TotalQuantity.String(),
		TotalSpent:    ledger.TotalSpent.String(),
		Purchases:     make([]storedPurchase, 0, len(ledger.Purchases)),
	}

	for _, p := range ledger.Purchases {
		sp := storedPurchase{
			Timestamp: p.Time,
			Fiat:      p.Spent.String(),
			Quantity:  p.Quantity.String(),
			UnitPrice: p.UnitPrice.String(),
			DryRun:    p.DryRun,
		}
		if p.OrderID != "" {
			orderID := p.OrderID
			sp.OrderID = &orderID
		}
		stored.Purchases = append(stored.Purchases, sp)
	}

	payload, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode ledger")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write ledger temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist ledger file")
	}

	return nil
}

func (s *Store) toLedger(stored storedLedger) (*domain.Ledger, error) {
	ledger := domain.NewLedger(s.pair)

	totalQuantity, err := domain.AssetQuantityFromString(stored.TotalQuantity, s.pair.From)
	if err != nil {
		return nil, errors.Wrap(err, "decode total quantity")
	}
	totalSpent, err := domain.FiatAmountFromString(stored.TotalSpent, s.pair.To)
	if err != nil {
		return nil, errors.Wrap(err, "decode total spent")
	}

	for i, sp := range stored.Purchases {
		fiat, err := domain.FiatAmountFromString(sp.Fiat, s.pair.To)
		if err != nil {
			return nil, errors.Wrapf(err, "decode purchase %d fiat amount", i)
		}
		quantity, err := domain.AssetQuantityFromString(sp.Quantity, s.pair.From)
		if err != nil {
			return nil, errors.Wrapf(err, "decode purchase %d quantity", i)
		}
		unitPrice, err := domain.FiatAmountFromString(sp.UnitPrice, s.pair.To)
		if err != nil {
			return nil, errors.Wrapf(err, "decode purchase %d unit price", i)
		}

		orderID := ""
		if sp.OrderID != nil {
			orderID = *sp.OrderID
		}

		ledger.Purchases = append(ledger.Purchases, domain.Purchase{
			Time:      sp.Timestamp,
			Spent:     fiat,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			DryRun:    sp.DryRun,
			OrderID:   orderID,
		})
	}

	ledger.TotalQuantity = totalQuantity
	ledger.TotalSpent = totalSpent
	return ledger, nil
}
