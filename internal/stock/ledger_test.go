package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/postgres"
)

// memStore meniru perilaku PGStore di memory, termasuk clamp reserved >= 0
// dan hitung row yang berubah.
type memStore struct {
	records        map[string]*StockRecord
	forceModified  *int64 // kalau di-set, Apply lapor angka ini (simulasi concurrent writer)
	lastLoadLocked bool
}

func (m *memStore) LoadRecords(_ context.Context, _ postgres.Querier, productIDs []string, lock bool) (map[string]*StockRecord, error) {
	m.lastLoadLocked = lock
	out := make(map[string]*StockRecord, len(productIDs))
	for _, id := range productIDs {
		if rec, ok := m.records[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

func (m *memStore) Apply(_ context.Context, _ postgres.Querier, ops []Op) (int64, error) {
	var modified int64
	for _, op := range ops {
		rec, ok := m.records[op.ProductID]
		if !ok {
			continue
		}
		if op.IsVariant() {
			v := rec.FindVariant(op.VariationID)
			if v == nil {
				continue
			}
			v.StockQty += op.DeltaStock
			v.ReservedQty += op.DeltaReserved
			if v.ReservedQty < 0 {
				v.ReservedQty = 0
			}
		} else {
			rec.StockQty += op.DeltaStock
			rec.ReservedQty += op.DeltaReserved
			if rec.ReservedQty < 0 {
				rec.ReservedQty = 0
			}
		}
		modified++
	}
	if m.forceModified != nil {
		return *m.forceModified, nil
	}
	return modified, nil
}

func newTestLedger(records map[string]*StockRecord) (*Ledger, *memStore) {
	store := &memStore{records: records}
	return NewLedger(nil, store, zap.NewNop()), store
}

func TestLedger_ReserveReleaseRoundTrip(t *testing.T) {
	ledger, store := newTestLedger(map[string]*StockRecord{
		"p1": managed("p1", 10, 2),
	})
	items := []InventoryItem{{ProductID: "p1", Quantity: 3}}

	require.NoError(t, ledger.ReserveTx(context.Background(), nil, items))
	assert.Equal(t, 5, store.records["p1"].ReservedQty)
	assert.True(t, store.lastLoadLocked)

	require.NoError(t, ledger.ReleaseTx(context.Background(), nil, items))
	assert.Equal(t, 2, store.records["p1"].ReservedQty)
	assert.Equal(t, 10, store.records["p1"].StockQty)
}

func TestLedger_DeductConsumesReservation(t *testing.T) {
	ledger, store := newTestLedger(map[string]*StockRecord{
		"p1": managed("p1", 10, 0),
	})
	items := []InventoryItem{{ProductID: "p1", Quantity: 4}}

	require.NoError(t, ledger.ReserveTx(context.Background(), nil, items))
	require.NoError(t, ledger.DeductTx(context.Background(), nil, items))

	assert.Equal(t, 6, store.records["p1"].StockQty)
	assert.Equal(t, 0, store.records["p1"].ReservedQty)
}

func TestLedger_Reserve_InsufficientStock_NoEffect(t *testing.T) {
	ledger, store := newTestLedger(map[string]*StockRecord{
		"p1": managed("p1", 3, 0),
	})

	err := ledger.ReserveTx(context.Background(), nil, []InventoryItem{{ProductID: "p1", Quantity: 4}})

	require.Error(t, err)
	assert.True(t, IsInsufficientStock(err))
	assert.Equal(t, 0, store.records["p1"].ReservedQty)
}

func TestLedger_Reserve_MissingProductFatal(t *testing.T) {
	ledger, _ := newTestLedger(map[string]*StockRecord{})

	err := ledger.ReserveTx(context.Background(), nil, []InventoryItem{{ProductID: "ghost", Quantity: 1}})

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestLedger_Deduct_ToleratesMissingProduct(t *testing.T) {
	ledger, store := newTestLedger(map[string]*StockRecord{
		"alive": managed("alive", 10, 5),
	})
	items := []InventoryItem{
		{ProductID: "deleted", Quantity: 2},
		{ProductID: "alive", Quantity: 5},
	}

	require.NoError(t, ledger.DeductTx(context.Background(), nil, items))

	assert.Equal(t, 5, store.records["alive"].StockQty)
	assert.Equal(t, 0, store.records["alive"].ReservedQty)
}

func TestLedger_EmptyItems_NoOp(t *testing.T) {
	ledger, _ := newTestLedger(map[string]*StockRecord{})

	assert.NoError(t, ledger.ReserveTx(context.Background(), nil, nil))
	assert.NoError(t, ledger.DeductTx(context.Background(), nil, nil))
	assert.NoError(t, ledger.ReleaseTx(context.Background(), nil, nil))
}

func TestLedger_ModifiedCountMismatch(t *testing.T) {
	ledger, store := newTestLedger(map[string]*StockRecord{
		"p1": managed("p1", 10, 0),
	})
	var zero int64
	store.forceModified = &zero

	err := ledger.ReserveTx(context.Background(), nil, []InventoryItem{{ProductID: "p1", Quantity: 1}})

	var cme *ConcurrentModificationError
	require.True(t, errors.As(err, &cme))
	assert.Equal(t, 1, cme.Submitted)
	assert.Equal(t, int64(0), cme.Modified)
}

func TestLedger_ReleaseClampsReservedAtZero(t *testing.T) {
	ledger, store := newTestLedger(map[string]*StockRecord{
		"p1": managed("p1", 10, 1),
	})

	require.NoError(t, ledger.ReleaseTx(context.Background(), nil, []InventoryItem{{ProductID: "p1", Quantity: 5}}))

	assert.Equal(t, 0, store.records["p1"].ReservedQty)
}

// Skenario end-to-end product simple: cek 5 -> gagal, reserve 3 -> ok,
// reserve 1 -> insufficient, release 3 -> balik ke 0.
func TestLedger_SimpleProductScenario(t *testing.T) {
	ledger, store := newTestLedger(map[string]*StockRecord{
		"P": managed("P", 3, 0),
	})
	ctx := context.Background()

	av, err := ledger.CheckAvailability(ctx, "P", "", 5)
	require.NoError(t, err)
	assert.False(t, av.CanFulfill)
	assert.Equal(t, 3, av.Available)

	require.NoError(t, ledger.ReserveTx(ctx, nil, []InventoryItem{{ProductID: "P", Quantity: 3}}))
	assert.Equal(t, 3, store.records["P"].ReservedQty)

	err = ledger.ReserveTx(ctx, nil, []InventoryItem{{ProductID: "P", Quantity: 1}})
	require.Error(t, err)
	assert.True(t, IsInsufficientStock(err))

	require.NoError(t, ledger.ReleaseTx(ctx, nil, []InventoryItem{{ProductID: "P", Quantity: 3}}))
	assert.Equal(t, 0, store.records["P"].ReservedQty)
}

// Skenario variant: stok 2 reserved 1 -> satu reserve lagi sukses, berikutnya
// gagal karena available sudah 0.
func TestLedger_VariantScenario(t *testing.T) {
	ledger, _ := newTestLedger(map[string]*StockRecord{
		"P": {
			ProductID:   "P",
			ManageStock: true,
			Variants:    []VariantRecord{{ID: "V", StockQty: 2, ReservedQty: 1}},
		},
	})
	ctx := context.Background()
	items := []InventoryItem{{ProductID: "P", VariationID: "V", Quantity: 1}}

	require.NoError(t, ledger.ReserveTx(ctx, nil, items))

	err := ledger.ReserveTx(ctx, nil, items)
	require.Error(t, err)
	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 0, ise.Available)
}

func TestLedger_CheckAvailability(t *testing.T) {
	ledger, _ := newTestLedger(map[string]*StockRecord{
		"P": managed("P", 10, 4),
		"U": {ProductID: "U", ManageStock: false, StockQty: 1},
		"W": {
			ProductID:   "W",
			ManageStock: true,
			Variants:    []VariantRecord{{ID: "V", StockQty: 3, ReservedQty: 1}},
		},
	})
	ctx := context.Background()

	av, err := ledger.CheckAvailability(ctx, "P", "", 6)
	require.NoError(t, err)
	assert.True(t, av.CanFulfill)
	assert.Equal(t, 6, av.Available)

	// unmanaged = unlimited
	av, err = ledger.CheckAvailability(ctx, "U", "", 1000)
	require.NoError(t, err)
	assert.True(t, av.CanFulfill)

	av, err = ledger.CheckAvailability(ctx, "W", "V", 2)
	require.NoError(t, err)
	assert.True(t, av.CanFulfill)
	assert.Equal(t, 2, av.Available)

	av, err = ledger.CheckAvailability(ctx, "W", "missing", 1)
	require.NoError(t, err)
	assert.False(t, av.CanFulfill)
	assert.Equal(t, 0, av.Available)

	_, err = ledger.CheckAvailability(ctx, "ghost", "", 1)
	assert.True(t, IsNotFound(err))
}
