package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// PricePrecision fractional digits kept for fiat amounts and unit prices.
	PricePrecision = 2
	// QuantityPrecision fractional digits kept for asset quantities.
	QuantityPrecision = 8
)

var (
	// ErrInvalidAmount reports a negative or unparsable monetary value.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnitMismatch reports arithmetic between values of different units.
	ErrUnitMismatch = errors.New("unit mismatch")
)

// FiatAmount is a non-negative exact decimal tagged with a fiat currency unit.
// Arithmetic is only defined between amounts of the same unit. Values
// round-trip through their decimal string form without precision loss.
type FiatAmount struct {
	value decimal.Decimal
	unit  string
}

// NewFiatAmount constructs a fiat amount from an exact decimal value.
func NewFiatAmount(value decimal.Decimal, unit string) (FiatAmount, error) {
	if unit == "" {
		return FiatAmount{}, errors.Wrap(ErrInvalidAmount, "empty currency unit")
	}
	if value.IsNegative() {
		return FiatAmount{}, errors.Wrapf(ErrInvalidAmount, "negative fiat amount %s", value.String())
	}
	return FiatAmount{value: value, unit: unit}, nil
}

// FiatAmountFromString parses a decimal string into a fiat amount.
func FiatAmountFromString(s, unit string) (FiatAmount, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return FiatAmount{}, errors.Wrapf(ErrInvalidAmount, "unparsable fiat amount %q", s)
	}
	return NewFiatAmount(value, unit)
}

// Value returns the underlying decimal.
func (a FiatAmount) Value() decimal.Decimal { return a.value }

// Unit returns the currency unit.
func (a FiatAmount) Unit() string { return a.unit }

// IsZero reports whether the amount is zero.
func (a FiatAmount) IsZero() bool { return a.value.IsZero() }

// String returns the lossless decimal string representation.
func (a FiatAmount) String() string { return a.value.String() }

// Add returns the sum of two amounts of the same unit.
func (a FiatAmount) Add(b FiatAmount) (FiatAmount, error) {
	if a.unit != b.unit {
		return FiatAmount{}, errors.Wrapf(ErrUnitMismatch, "cannot add %s to %s", b.unit, a.unit)
	}
	return FiatAmount{value: a.value.Add(b.value), unit: a.unit}, nil
}

// Cmp compares two amounts of the same unit: -1 if a < b, 0 if equal, 1 if a > b.
func (a FiatAmount) Cmp(b FiatAmount) (int, error) {
	if a.unit != b.unit {
		return 0, errors.Wrapf(ErrUnitMismatch, "cannot compare %s with %s", a.unit, b.unit)
	}
	return a.value.Cmp(b.value), nil
}

// Truncate rounds the amount down to PricePrecision fractional digits.
func (a FiatAmount) Truncate() FiatAmount {
	return FiatAmount{value: a.value.RoundFloor(PricePrecision), unit: a.unit}
}

// DivPrice sizes an order: dividing a fiat budget by a unit price
// (fiat per one unit of assetUnit) yields the asset quantity the
// budget can buy. The result is truncated (rounded down) to
// QuantityPrecision digits so the sized order never exceeds the budget.
func (a FiatAmount) DivPrice(price FiatAmount, assetUnit string) (AssetQuantity, error) {
	if a.unit != price.unit {
		return AssetQuantity{}, errors.Wrapf(ErrUnitMismatch, "budget in %s, price in %s", a.unit, price.unit)
	}
	if price.value.LessThanOrEqual(decimal.Zero) {
		return AssetQuantity{}, errors.Wrapf(ErrInvalidAmount, "non-positive unit price %s", price.String())
	}
	quantity := a.value.Div(price.value).RoundFloor(QuantityPrecision)
	return NewAssetQuantity(quantity, assetUnit)
}

// AssetQuantity is a non-negative exact decimal tagged with an asset unit.
// Same invariants and serialization contract as FiatAmount.
type AssetQuantity struct {
	value decimal.Decimal
	unit  string
}

// NewAssetQuantity constructs an asset quantity from an exact decimal value.
func NewAssetQuantity(value decimal.Decimal, unit string) (AssetQuantity, error) {
	if unit == "" {
		return AssetQuantity{}, errors.Wrap(ErrInvalidAmount, "empty asset unit")
	}
	if value.IsNegative() {
		return AssetQuantity{}, errors.Wrapf(ErrInvalidAmount, "negative asset quantity %s", value.String())
	}
	return AssetQuantity{value: value, unit: unit}, nil
}

// AssetQuantityFromString parses a decimal string into an asset quantity.
func AssetQuantityFromString(s, unit string) (AssetQuantity, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return AssetQuantity{}, errors.Wrapf(ErrInvalidAmount, "unparsable asset quantity %q", s)
	}
	return NewAssetQuantity(value, unit)
}

// Value returns the underlying decimal.
func (q AssetQuantity) Value() decimal.Decimal { return q.value }

// Unit returns the asset unit.
func (q AssetQuantity) Unit() string { return q.unit }

// IsZero reports whether the quantity is zero.
func (q AssetQuantity) IsZero() bool { return q.value.IsZero() }

// String returns the lossless decimal string representation.
func (q AssetQuantity) String() string { return q.value.String() }

// Add returns the sum of two quantities of the same unit.
func (q AssetQuantity) Add(other AssetQuantity) (AssetQuantity, error) {
	if q.unit != other.unit {
		return AssetQuantity{}, errors.Wrapf(ErrUnitMismatch, "cannot add %s to %s", other.unit, q.unit)
	}
	return AssetQuantity{value: q.value.Add(other.value), unit: q.unit}, nil
}

// Cmp compares two quantities of the same unit.
func (q AssetQuantity) Cmp(other AssetQuantity) (int, error) {
	if q.unit != other.unit {
		return 0, errors.Wrapf(ErrUnitMismatch, "cannot compare %s with %s", q.unit, other.unit)
	}
	return q.value.Cmp(other.value), nil
}

func (q AssetQuantity) GoString() string {
	return fmt.Sprintf("%s %s", q.value.String(), q.unit)
}
