package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFiatAmountRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "50", "50.00", "33.333333", "123456789.12345678", "0.00000001"} {
		amount, err := FiatAmountFromString(s, "EUR")
		require.NoError(t, err)

		normalized := decimal.RequireFromString(s).String()
		require.Equal(t, normalized, amount.String(), "round trip for %q", s)
	}
}

func TestAssetQuantityRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.16666666", "1", "21.00000001"} {
		quantity, err := AssetQuantityFromString(s, "ZEC")
		require.NoError(t, err)

		normalized := decimal.RequireFromString(s).String()
		require.Equal(t, normalized, quantity.String(), "round trip for %q", s)
	}
}

func TestFiatAmountInvalid(t *testing.T) {
	_, err := FiatAmountFromString("not a number", "EUR")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = FiatAmountFromString("-5", "EUR")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewFiatAmount(decimal.NewFromInt(10), "")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAssetQuantityInvalid(t *testing.T) {
	_, err := AssetQuantityFromString("abc", "ZEC")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewAssetQuantity(decimal.NewFromInt(-1), "ZEC")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFiatAmountUnitMismatch(t *testing.T) {
	eur, err := FiatAmountFromString("10", "EUR")
	require.NoError(t, err)
	usd, err := FiatAmountFromString("10", "USD")
	require.NoError(t, err)

	_, err = eur.Add(usd)
	require.ErrorIs(t, err, ErrUnitMismatch)

	_, err = eur.Cmp(usd)
	require.ErrorIs(t, err, ErrUnitMismatch)

	_, err = eur.DivPrice(usd, "ZEC")
	require.ErrorIs(t, err, ErrUnitMismatch)
}

func TestFiatAmountAdd(t *testing.T) {
	a, err := FiatAmountFromString("10.55", "EUR")
	require.NoError(t, err)
	b, err := FiatAmountFromString("0.45", "EUR")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, "11", sum.String())
	require.Equal(t, "EUR", sum.Unit())
}

func TestDivPriceTruncatesDown(t *testing.T) {
	budget, err := FiatAmountFromString("50.00", "EUR")
	require.NoError(t, err)
	price, err := FiatAmountFromString("33.333333", "EUR")
	require.NoError(t, err)

	quantity, err := budget.DivPrice(price, "ZEC")
	require.NoError(t, err)

	// exact quotient is 1.50000001500000015..., must truncate, never round up
	require.Equal(t, "1.50000001", quantity.String())

	// the sized order never costs more than the budget
	cost := quantity.Value().Mul(price.Value())
	require.True(t, cost.LessThanOrEqual(budget.Value()))
}

func TestDivPriceSizesBudget(t *testing.T) {
	budget, err := FiatAmountFromString("50.00", "EUR")
	require.NoError(t, err)
	price, err := FiatAmountFromString("300.00", "EUR")
	require.NoError(t, err)

	quantity, err := budget.DivPrice(price, "ZEC")
	require.NoError(t, err)
	require.Equal(t, "0.16666666", quantity.String())
}

func TestDivPriceZeroPrice(t *testing.T) {
	budget, err := FiatAmountFromString("50", "EUR")
	require.NoError(t, err)
	zero, err := FiatAmountFromString("0", "EUR")
	require.NoError(t, err)

	_, err = budget.DivPrice(zero, "ZEC")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFiatAmountTruncate(t *testing.T) {
	a, err := FiatAmountFromString("50.129", "EUR")
	require.NoError(t, err)
	require.Equal(t, "50.12", a.Truncate().String())
}

func TestPairFromString(t *testing.T) {
	pair, err := PairFromString("ZEC_EUR")
	require.NoError(t, err)
	require.Equal(t, "ZEC", pair.From)
	require.Equal(t, "EUR", pair.To)
	require.Equal(t, "ZECEUR", pair.Symbol())

	_, err = PairFromString("ZECEUR")
	require.Error(t, err)
	_, err = PairFromString("_EUR")
	require.Error(t, err)
}
