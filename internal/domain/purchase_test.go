package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewPurchase(t *testing.T) {
	spent, err := FiatAmountFromString("50.00", "EUR")
	require.NoError(t, err)
	quantity, err := AssetQuantityFromString("0.16666666", "ZEC")
	require.NoError(t, err)
	price, err := FiatAmountFromString("300.00", "EUR")
	require.NoError(t, err)

	p, err := NewPurchase(spent, quantity, price, false, "OID-1")
	require.NoError(t, err)
	require.Equal(t, "OID-1", p.OrderID)
	require.False(t, p.DryRun)
	require.Equal(t, time.UTC, p.Time.Location())
	require.WithinDuration(t, time.Now().UTC(), p.Time, time.Minute)
}

func TestNewPurchaseDryRunDropsOrderID(t *testing.T) {
	spent, err := FiatAmountFromString("50", "EUR")
	require.NoError(t, err)
	quantity, err := AssetQuantityFromString("1", "ZEC")
	require.NoError(t, err)
	price, err := FiatAmountFromString("50", "EUR")
	require.NoError(t, err)

	p, err := NewPurchase(spent, quantity, price, true, "should-vanish")
	require.NoError(t, err)
	require.True(t, p.DryRun)
	require.Empty(t, p.OrderID)
}

func TestNewPurchaseRejectsBadInput(t *testing.T) {
	spent, err := FiatAmountFromString("50", "EUR")
	require.NoError(t, err)
	quantity, err := AssetQuantityFromString("1", "ZEC")
	require.NoError(t, err)

	zeroPrice, err := FiatAmountFromString("0", "EUR")
	require.NoError(t, err)
	_, err = NewPurchase(spent, quantity, zeroPrice, false, "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	usdPrice, err := FiatAmountFromString("300", "USD")
	require.NoError(t, err)
	_, err = NewPurchase(spent, quantity, usdPrice, false, "")
	require.ErrorIs(t, err, ErrUnitMismatch)
}
