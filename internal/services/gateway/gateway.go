// Package gateway abstracts the exchange boundary: quote retrieval
// and market order placement. Concrete adapters exist for Binance and
// Bybit, plus a deterministic in-process simulator for tests and
// offline runs.
package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

// Fill is the exchange-confirmed outcome of a market order. Filled
// quantity and price may differ from the pre-trade quote and are the
// record of truth for the ledger.
type Fill struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
	OrderID  string
}

// Gateway is the capability interface the orchestrator consumes.
type Gateway interface {
	// GetQuote returns the current unit price (quote currency per one
	// unit of the base asset).
	GetQuote(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
	// PlaceMarketOrder submits a market buy for the given base
	// quantity and returns the confirmed fill. Implementations must
	// submit at most once per call; the caller never retries.
	PlaceMarketOrder(ctx context.Context, pair domain.Pair, quantity decimal.Decimal, clientOrderID string) (Fill, error)
}
