package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Purchase is an immutable record of one executed (or simulated)
// transaction. It is created once by NewPurchase and never mutated;
// once appended the ledger's history owns it exclusively.
type Purchase struct {
	// Time UTC timestamp of execution.
	Time time.Time
	// Spent fiat amount actually spent.
	Spent FiatAmount
	// Quantity asset quantity actually received.
	Quantity AssetQuantity
	// UnitPrice fiat per one unit of the asset at execution.
	UnitPrice FiatAmount
	// DryRun true for simulated executions.
	DryRun bool
	// OrderID exchange-assigned order identifier, empty for dry runs.
	OrderID string
}

// NewPurchase builds a purchase record stamped with the current UTC time.
// Dry-run purchases carry no order ID.
func NewPurchase(spent FiatAmount, quantity AssetQuantity, unitPrice FiatAmount, dryRun bool, orderID string) (Purchase, error) {
	if unitPrice.Value().LessThanOrEqual(decimal.Zero) {
		return Purchase{}, errors.Wrapf(ErrInvalidAmount, "non-positive unit price %s", unitPrice.String())
	}
	if spent.Unit() != unitPrice.Unit() {
		return Purchase{}, errors.Wrapf(ErrUnitMismatch, "spent in %s, price in %s", spent.Unit(), unitPrice.Unit())
	}
	if dryRun {
		orderID = ""
	}

	return Purchase{
		Time:      time.Now().UTC(),
		Spent:     spent,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		DryRun:    dryRun,
		OrderID:   orderID,
	}, nil
}
