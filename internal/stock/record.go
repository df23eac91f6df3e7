package stock

// DefaultLowStockThreshold dipakai kalau product tidak set threshold sendiri.
const DefaultLowStockThreshold = 5

type StockStatus string

const (
	StatusInStock     StockStatus = "instock"
	StatusOutOfStock  StockStatus = "outofstock"
	StatusOnBackorder StockStatus = "onbackorder"
)

// InventoryItem adalah unit kerja reserve/deduct/release. Tidak dipersist.
type InventoryItem struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

// StockRecord adalah potongan field stok dari satu product, hasil load batch.
// Field stok lama yang dobel (stock vs stockQuantity) sudah dikolaps jadi satu
// StockQty; alias lama cuma tersisa sebagai VariantRecord.LegacyID.
type StockRecord struct {
	ProductID         string
	ManageStock       bool
	StockQty          int
	ReservedQty       int
	StockStatus       StockStatus // dipakai kalau ManageStock=false
	BackordersAllowed bool
	LowStockThreshold int // 0 = pakai default
	Variants          []VariantRecord
}

// VariantRecord adalah stok satu variant (size/warna) di dalam product.
type VariantRecord struct {
	ID          string
	LegacyID    string // id embedded-document lama, fallback matching
	StockQty    int
	ReservedQty int
}

// FindVariant cari variant by id kanonik atau legacy id. nil kalau tidak ada.
func (r *StockRecord) FindVariant(variationID string) *VariantRecord {
	for i := range r.Variants {
		v := &r.Variants[i]
		if v.ID == variationID || (v.LegacyID != "" && v.LegacyID == variationID) {
			return v
		}
	}
	return nil
}

// Available = max(0, stock - reserved). Tidak pernah negatif.
func Available(stockQty, reservedQty int) int {
	a := stockQty - reservedQty
	if a < 0 {
		return 0
	}
	return a
}

func (r *StockRecord) Available() int {
	return Available(r.StockQty, r.ReservedQty)
}

func (v *VariantRecord) Available() int {
	return Available(v.StockQty, v.ReservedQty)
}

func (r *StockRecord) threshold() int {
	if r.LowStockThreshold > 0 {
		return r.LowStockThreshold
	}
	return DefaultLowStockThreshold
}

// IsLowStock: managed dan 0 < available <= threshold. available == 0 itu
// out-of-stock, bukan low-stock.
func (r *StockRecord) IsLowStock() bool {
	if !r.ManageStock {
		return false
	}
	a := r.Available()
	return a > 0 && a <= r.threshold()
}

// IsOutOfStock: managed dan available <= 0; kalau stok tidak di-manage,
// ikut field StockStatus yang diset dari luar.
func (r *StockRecord) IsOutOfStock() bool {
	if !r.ManageStock {
		return r.StockStatus == StatusOutOfStock
	}
	return r.Available() <= 0
}

// CanReserve: unlimited kalau stok tidak di-manage, selain itu cek available.
func (r *StockRecord) CanReserve(qty int) bool {
	if !r.ManageStock {
		return true
	}
	return r.Available() >= qty
}

// StatusFor menghitung stock status dari available + kebijakan backorder.
func StatusFor(available int, backordersAllowed bool) StockStatus {
	if available <= 0 {
		if backordersAllowed {
			return StatusOnBackorder
		}
		return StatusOutOfStock
	}
	return StatusInStock
}
