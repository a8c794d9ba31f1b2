package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testPurchase(t *testing.T, spent, quantity, price string, dryRun bool) Purchase {
	t.Helper()

	fiat, err := FiatAmountFromString(spent, "EUR")
	require.NoError(t, err)
	qty, err := AssetQuantityFromString(quantity, "ZEC")
	require.NoError(t, err)
	unitPrice, err := FiatAmountFromString(price, "EUR")
	require.NoError(t, err)

	p, err := NewPurchase(fiat, qty, unitPrice, dryRun, "order-1")
	require.NoError(t, err)
	return p
}

func TestLedgerRecordSumsRealPurchases(t *testing.T) {
	ledger := NewLedger(Pair{From: "ZEC", To: "EUR"})

	require.NoError(t, ledger.Record(testPurchase(t, "50.00", "0.16666666", "300.00", false)))
	require.NoError(t, ledger.Record(testPurchase(t, "50.00", "0.2", "250.00", false)))

	require.Equal(t, "0.36666666", ledger.TotalQuantity.String())
	require.Equal(t, "100", ledger.TotalSpent.String())
	require.Len(t, ledger.Purchases, 2)

	sumQty, sumSpent, err := ledger.SumHistory()
	require.NoError(t, err)
	require.True(t, ledger.TotalQuantity.Value().Equal(sumQty.Value()))
	require.True(t, ledger.TotalSpent.Value().Equal(sumSpent.Value()))
}

func TestLedgerDryRunExcludedFromTotals(t *testing.T) {
	ledger := NewLedger(Pair{From: "ZEC", To: "EUR"})

	require.NoError(t, ledger.Record(testPurchase(t, "50.00", "0.16666666", "300.00", true)))

	require.Len(t, ledger.Purchases, 1)
	require.True(t, ledger.TotalQuantity.IsZero())
	require.True(t, ledger.TotalSpent.IsZero())
}

func TestLedgerStatisticsEmpty(t *testing.T) {
	ledger := NewLedger(Pair{From: "ZEC", To: "EUR"})

	stats := ledger.Statistics()
	require.False(t, stats.HasData)
	require.Zero(t, stats.PurchaseCount)
	require.Equal(t, "0", stats.AveragePrice.String())
	require.Equal(t, "0", stats.TotalQuantity.String())
}

func TestLedgerStatistics(t *testing.T) {
	ledger := NewLedger(Pair{From: "ZEC", To: "EUR"})
	require.NoError(t, ledger.Record(testPurchase(t, "30", "1", "30", false)))
	require.NoError(t, ledger.Record(testPurchase(t, "60", "1", "60", false)))

	stats := ledger.Statistics()
	require.True(t, stats.HasData)
	require.Equal(t, 2, stats.PurchaseCount)
	require.Equal(t, "2", stats.TotalQuantity.String())
	require.Equal(t, "90", stats.TotalSpent.String())
	require.Equal(t, "45", stats.AveragePrice.String())

	// repeated calls with no intervening Record return identical results
	again := ledger.Statistics()
	require.Equal(t, stats, again)
}

func TestLedgerStatisticsAveragePriceTruncates(t *testing.T) {
	ledger := NewLedger(Pair{From: "ZEC", To: "EUR"})
	require.NoError(t, ledger.Record(testPurchase(t, "10", "3", "3.34", false)))

	stats := ledger.Statistics()
	// 10/3 = 3.333..., truncated down to cents
	require.Equal(t, "3.33", stats.AveragePrice.String())
}

func TestLedgerRecent(t *testing.T) {
	ledger := NewLedger(Pair{From: "ZEC", To: "EUR"})
	for i := 0; i < 7; i++ {
		require.NoError(t, ledger.Record(testPurchase(t, "10", "1", "10", false)))
	}

	require.Len(t, ledger.Recent(5), 5)
	require.Len(t, ledger.Recent(100), 7)
	require.Nil(t, ledger.Recent(0))
}
