package ledgerstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

var testPair = domain.Pair{From: "ZEC", To: "EUR"}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "ledger.json"), testPair)
}

func mustPurchase(t *testing.T, spent, quantity, price string, dryRun bool, orderID string) domain.Purchase {
	t.Helper()

	fiat, err := domain.FiatAmountFromString(spent, "EUR")
	require.NoError(t, err)
	qty, err := domain.AssetQuantityFromString(quantity, "ZEC")
	require.NoError(t, err)
	unitPrice, err := domain.FiatAmountFromString(price, "EUR")
	require.NoError(t, err)

	p, err := domain.NewPurchase(fiat, qty, unitPrice, dryRun, orderID)
	require.NoError(t, err)
	return p
}

func TestLoadMissingFileYieldsEmptyLedger(t *testing.T) {
	store := newTestStore(t)

	ledger, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, ledger.Purchases)
	require.True(t, ledger.TotalQuantity.IsZero())
	require.True(t, ledger.TotalSpent.IsZero())
}

func TestSaveLoadEmptyLedger(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(domain.NewLedger(testPair)))

	ledger, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, ledger.Purchases)
	require.Equal(t, "0", ledger.TotalQuantity.String())
	require.Equal(t, "0", ledger.TotalSpent.String())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	ledger := domain.NewLedger(testPair)
	require.NoError(t, ledger.Record(mustPurchase(t, "50.00", "0.16666666", "300.00", false, "OID-1")))
	require.NoError(t, ledger.Record(mustPurchase(t, "50.00", "0.25", "200.00", false, "OID-2")))
	require.NoError(t, ledger.Record(mustPurchase(t, "50.00", "0.2", "250.00", true, "")))

	require.NoError(t, store.Save(ledger))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Purchases, 3)
	require.Equal(t, ledger.TotalQuantity.String(), loaded.TotalQuantity.String())
	require.Equal(t, ledger.TotalSpent.String(), loaded.TotalSpent.String())

	for i, p := range ledger.Purchases {
		require.Equal(t, p.Spent.String(), loaded.Purchases[i].Spent.String())
		require.Equal(t, p.Quantity.String(), loaded.Purchases[i].Quantity.String())
		require.Equal(t, p.UnitPrice.String(), loaded.Purchases[i].UnitPrice.String())
		require.Equal(t, p.DryRun, loaded.Purchases[i].DryRun)
		require.Equal(t, p.OrderID, loaded.Purchases[i].OrderID)
		require.True(t, p.Time.Equal(loaded.Purchases[i].Time))
	}

	// saving twice wins over the previous file and leaves no temp file behind
	require.NoError(t, store.Save(loaded))
	_, err = os.Stat(store.Path() + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestDecimalStringsOnDisk(t *testing.T) {
	store := newTestStore(t)

	ledger := domain.NewLedger(testPair)
	require.NoError(t, ledger.Record(mustPurchase(t, "50.00", "0.16666666", "300.00", false, "OID-1")))
	require.NoError(t, store.Save(ledger))

	payload, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	require.IsType(t, "", raw["total_asset_quantity"])
	require.IsType(t, "", raw["total_fiat_spent"])

	purchases := raw["purchases"].([]any)
	first := purchases[0].(map[string]any)
	require.IsType(t, "", first["fiat_amount"])
	require.IsType(t, "", first["asset_quantity"])
	require.IsType(t, "", first["unit_price"])
}

func TestLoadUnparsableFileIsCorrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrCorruptState)
}

func TestLoadMismatchedTotalsIsCorrupt(t *testing.T) {
	store := newTestStore(t)

	ledger := domain.NewLedger(testPair)
	require.NoError(t, ledger.Record(mustPurchase(t, "50.00", "0.16666666", "300.00", false, "OID-1")))
	require.NoError(t, store.Save(ledger))

	// tamper with the stored total
	payload, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	raw["total_asset_quantity"] = "99"
	tampered, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), tampered, 0o644))

	_, err = store.Load()
	require.ErrorIs(t, err, ErrCorruptState)
}

func TestLoadBadDecimalIsCorrupt(t *testing.T) {
	store := newTestStore(t)
	payload := `{"pair":"ZEC_EUR","total_asset_quantity":"abc","total_fiat_spent":"0","purchases":[]}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(payload), 0o644))

	_, err := store.Load()
	require.ErrorIs(t, err, ErrCorruptState)
}

func TestDryRunOrderIDStoredAsNull(t *testing.T) {
	store := newTestStore(t)

	ledger := domain.NewLedger(testPair)
	require.NoError(t, ledger.Record(mustPurchase(t, "50.00", "0.2", "250.00", true, "")))
	require.NoError(t, store.Save(ledger))

	payload, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var raw struct {
		Purchases []struct {
			OrderID *string `json:"order_id"`
			DryRun  bool    `json:"dry_run"`
		} `json:"purchases"`
	}
	require.NoError(t, json.Unmarshal(payload, &raw))
	require.Len(t, raw.Purchases, 1)
	require.Nil(t, raw.Purchases[0].OrderID)
	require.True(t, raw.Purchases[0].DryRun)
}
