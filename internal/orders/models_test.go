package orders

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

func TestTotalsCalc(t *testing.T) {
	calc := NewTotalsCalc(d("0.1"))
	items := []OrderItem{
		{Quantity: 2, Price: d("100000"), Total: d("200000")},
		{Quantity: 1, Price: d("50000"), Total: d("50000")},
	}

	totals := calc(items, d("30000"), d("20000"))

	assert.True(t, totals.Subtotal.Equal(d("250000")))
	assert.True(t, totals.TaxTotal.Equal(d("25000")))
	assert.True(t, totals.ShippingTotal.Equal(d("30000")))
	assert.True(t, totals.DiscountTotal.Equal(d("20000")))
	assert.True(t, totals.GrandTotal.Equal(d("285000")))
}

func TestTotalsCalc_EmptyItems(t *testing.T) {
	calc := NewTotalsCalc(decimal.Zero)

	totals := calc(nil, decimal.Zero, decimal.Zero)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
}

func TestTotalsCalc_GrandTotalNeverNegative(t *testing.T) {
	calc := NewTotalsCalc(decimal.Zero)
	items := []OrderItem{{Quantity: 1, Price: d("1000"), Total: d("1000")}}

	totals := calc(items, decimal.Zero, d("5000"))

	assert.True(t, totals.GrandTotal.IsZero())
}
