package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable_NeverNegative(t *testing.T) {
	assert.Equal(t, 5, Available(10, 5))
	assert.Equal(t, 0, Available(10, 10))
	assert.Equal(t, 0, Available(3, 7))
}

func TestIsLowStock(t *testing.T) {
	rec := &StockRecord{ManageStock: true, StockQty: 10, ReservedQty: 6}
	assert.True(t, rec.IsLowStock()) // available=4 <= default 5

	rec.ReservedQty = 0
	assert.False(t, rec.IsLowStock()) // available=10

	rec.ReservedQty = 10
	assert.False(t, rec.IsLowStock()) // available=0 adalah out-of-stock, bukan low

	rec.LowStockThreshold = 2
	rec.ReservedQty = 7
	assert.False(t, rec.IsLowStock()) // available=3 > threshold 2
	rec.ReservedQty = 8
	assert.True(t, rec.IsLowStock())
}

func TestIsLowStock_Unmanaged(t *testing.T) {
	rec := &StockRecord{ManageStock: false, StockQty: 1, ReservedQty: 0}
	assert.False(t, rec.IsLowStock())
}

func TestIsOutOfStock(t *testing.T) {
	rec := &StockRecord{ManageStock: true, StockQty: 10, ReservedQty: 10}
	assert.True(t, rec.IsOutOfStock())
	assert.False(t, rec.IsLowStock())

	rec.ReservedQty = 9
	assert.False(t, rec.IsOutOfStock())
}

func TestIsOutOfStock_UnmanagedUsesStatus(t *testing.T) {
	rec := &StockRecord{ManageStock: false, StockStatus: StatusOutOfStock}
	assert.True(t, rec.IsOutOfStock())

	rec.StockStatus = StatusInStock
	assert.False(t, rec.IsOutOfStock())
}

func TestCanReserve(t *testing.T) {
	rec := &StockRecord{ManageStock: true, StockQty: 5, ReservedQty: 2}
	assert.True(t, rec.CanReserve(3))
	assert.False(t, rec.CanReserve(4))

	unmanaged := &StockRecord{ManageStock: false}
	assert.True(t, unmanaged.CanReserve(9999))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusInStock, StatusFor(1, false))
	assert.Equal(t, StatusOutOfStock, StatusFor(0, false))
	assert.Equal(t, StatusOnBackorder, StatusFor(0, true))
	assert.Equal(t, StatusOnBackorder, StatusFor(-2, true))
}

func TestFindVariant_CanonicalAndLegacyID(t *testing.T) {
	rec := &StockRecord{
		Variants: []VariantRecord{
			{ID: "var-1", LegacyID: "old-1", StockQty: 2},
			{ID: "var-2", StockQty: 3},
		},
	}

	assert.Equal(t, 2, rec.FindVariant("var-1").StockQty)
	assert.Equal(t, 2, rec.FindVariant("old-1").StockQty)
	assert.Equal(t, 3, rec.FindVariant("var-2").StockQty)
	assert.Nil(t, rec.FindVariant("nope"))
}

func TestFindVariant_EmptyLegacyNeverMatchesEmptyQuery(t *testing.T) {
	rec := &StockRecord{Variants: []VariantRecord{{ID: "var-1"}}}
	assert.Nil(t, rec.FindVariant(""))
}
