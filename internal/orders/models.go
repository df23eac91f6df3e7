package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string
	ExternalID    string
	UserID        string
	Status        Status
	Version       int // optimistic concurrency token, dipakai sebagai predicate saat write
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem menyimpan snapshot nama/harga/cost saat item dibuat; referensi ke
// product cuma weak reference by id (product yang dihapus tidak merusak
// tampilan order lama).
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	VariationID string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
	CostPrice   *decimal.Decimal
	Total       decimal.Decimal // price * quantity
}

// Totals adalah hasil rekalkulasi dari luar core (lihat TotalsFunc).
type Totals struct {
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
}

// TotalsFunc dikonsumsi sebagai black box; tax/shipping rules bukan urusan
// core ini. currentShipping & discount diambil dari order yang sedang diedit.
type TotalsFunc func(items []OrderItem, currentShipping, discount decimal.Decimal) Totals

// NewTotalsCalc bikin TotalsFunc referensi dengan tax rate flat, cukup untuk
// menjalankan service pair. Deployment nyata menyuntikkan implementasi lain.
func NewTotalsCalc(taxRate decimal.Decimal) TotalsFunc {
	return func(items []OrderItem, currentShipping, discount decimal.Decimal) Totals {
		subtotal := decimal.Zero
		for _, it := range items {
			subtotal = subtotal.Add(it.Total)
		}
		tax := subtotal.Mul(taxRate).Round(2)
		grand := subtotal.Add(tax).Add(currentShipping).Sub(discount)
		if grand.IsNegative() {
			grand = decimal.Zero
		}
		return Totals{
			Subtotal:      subtotal,
			TaxTotal:      tax,
			ShippingTotal: currentShipping,
			DiscountTotal: discount,
			GrandTotal:    grand,
		}
	}
}
