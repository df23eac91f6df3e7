package stock

import "errors"

// Verb menentukan semantik operasi yang dibangun terhadap record stok.
type Verb string

const (
	VerbReserve Verb = "reserve"
	VerbDeduct  Verb = "deduct"
	VerbRelease Verb = "release"
)

// Op adalah satu update increment tertarget: product row atau variant row.
// Apply di store menerjemahkan ini jadi satu statement di pgx.Batch.
type Op struct {
	ProductID     string
	VariationID   string // kosong = target product; isi = match id kanonik ATAU legacy id
	DeltaStock    int
	DeltaReserved int
}

// IsVariant true kalau op menarget variant row, bukan product row.
func (o Op) IsVariant() bool { return o.VariationID != "" }

// BuildOps membangun operasi update untuk satu verb dari item + record yang
// sudah di-load. Validasi exhaustive: SEMUA item dicek dulu, baru ops
// dikembalikan; satu saja gagal -> tidak ada op yang keluar (errors.Join
// semua kegagalan, all-or-nothing di level batch).
//
// Aturan skip:
//   - product unmanaged tanpa stok dan tanpa variant: exempt, bukan error
//   - variant yang tidak ketemu di product-nya: skip diam-diam (data lama)
func BuildOps(verb Verb, items []InventoryItem, records map[string]*StockRecord) ([]Op, error) {
	ops := make([]Op, 0, len(items))
	var errs []error

	for _, it := range items {
		rec, ok := records[it.ProductID]
		if !ok {
			errs = append(errs, &NotFoundError{ProductID: it.ProductID})
			continue
		}
		if !rec.ManageStock && rec.StockQty == 0 && len(rec.Variants) == 0 {
			continue
		}

		if it.VariationID != "" {
			v := rec.FindVariant(it.VariationID)
			if v == nil {
				continue
			}
			if err := validate(verb, rec, it, v.Available(), v.StockQty); err != nil {
				errs = append(errs, err)
				continue
			}
			ops = append(ops, buildOp(verb, it))
			continue
		}

		if err := validate(verb, rec, it, rec.Available(), rec.StockQty); err != nil {
			errs = append(errs, err)
			continue
		}
		ops = append(ops, buildOp(verb, it))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ops, nil
}

func validate(verb Verb, rec *StockRecord, it InventoryItem, available, stockQty int) error {
	if !rec.ManageStock {
		return nil // unlimited
	}
	switch verb {
	case VerbReserve:
		if available < it.Quantity {
			return &InsufficientStockError{
				ProductID:   it.ProductID,
				VariationID: it.VariationID,
				Requested:   it.Quantity,
				Available:   available,
			}
		}
	case VerbDeduct:
		// deduksi = konsumsi final unit fisik, dicek lawan stok, bukan available
		if stockQty < it.Quantity {
			return &InsufficientStockError{
				ProductID:   it.ProductID,
				VariationID: it.VariationID,
				Requested:   it.Quantity,
				Available:   stockQty,
			}
		}
	case VerbRelease:
		// release selalu lolos secara numerik
	}
	return nil
}

func buildOp(verb Verb, it InventoryItem) Op {
	op := Op{ProductID: it.ProductID, VariationID: it.VariationID}
	switch verb {
	case VerbReserve:
		op.DeltaReserved = it.Quantity
	case VerbDeduct:
		op.DeltaStock = -it.Quantity
		op.DeltaReserved = -it.Quantity
	case VerbRelease:
		op.DeltaReserved = -it.Quantity
	}
	return op
}
