package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestSnapshotFor_SimpleProduct(t *testing.T) {
	p := &Product{ID: "p1", Name: "Gau Bong", Price: d("200000"), CostPrice: dp("120000")}

	snap := p.SnapshotFor("")

	assert.Equal(t, "Gau Bong", snap.Name)
	assert.True(t, snap.Price.Equal(d("200000")))
	assert.True(t, snap.Cost.Equal(d("120000")))
}

func TestSnapshotFor_SalePricePreferred(t *testing.T) {
	p := &Product{ID: "p1", Name: "Gau Bong", Price: d("200000"), SalePrice: dp("180000")}

	snap := p.SnapshotFor("")

	assert.True(t, snap.Price.Equal(d("180000")))
}

func TestSnapshotFor_VariantPricePreferred(t *testing.T) {
	p := &Product{
		ID: "p1", Name: "Gau Bong", Price: d("200000"), CostPrice: dp("120000"),
		Variants: []Variant{
			{ID: "v1", Price: dp("250000"), CostPrice: dp("150000")},
			{ID: "v2"}, // variant tanpa harga sendiri ikut parent
		},
	}

	snap := p.SnapshotFor("v1")
	assert.True(t, snap.Price.Equal(d("250000")))
	assert.True(t, snap.Cost.Equal(d("150000")))

	snap = p.SnapshotFor("v2")
	assert.True(t, snap.Price.Equal(d("200000")))
	assert.True(t, snap.Cost.Equal(d("120000")))
}

func TestSnapshotFor_VariantByLegacyID(t *testing.T) {
	p := &Product{
		ID: "p1", Name: "Gau Bong", Price: d("200000"),
		Variants: []Variant{{ID: "v1", LegacyID: "old-v1", Price: dp("300000")}},
	}

	snap := p.SnapshotFor("old-v1")

	assert.True(t, snap.Price.Equal(d("300000")))
}

func TestSnapshotFor_UnknownVariantFallsBackToParent(t *testing.T) {
	p := &Product{
		ID: "p1", Name: "Gau Bong", Price: d("200000"),
		Variants: []Variant{{ID: "v1", Price: dp("300000")}},
	}

	snap := p.SnapshotFor("missing")

	assert.True(t, snap.Price.Equal(d("200000")))
}
