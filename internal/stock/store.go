package stock

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/postgres"
)

// Store adalah port persistence untuk record stok. Ada di interface supaya
// ledger bisa dites tanpa Postgres (lihat RecordStore in-memory di test).
type Store interface {
	// LoadRecords ambil record stok banyak product dalam satu round trip per
	// tabel. Product yang tidak ada ya tidak muncul sebagai key; caller yang
	// memutuskan itu fatal atau bukan. lock=true menahan row (FOR UPDATE)
	// sampai transaksi selesai.
	LoadRecords(ctx context.Context, q postgres.Querier, productIDs []string, lock bool) (map[string]*StockRecord, error)

	// Apply mengeksekusi ops sebagai batch write atomik dan mengembalikan
	// jumlah row yang benar-benar berubah (untuk cek postcondition di ledger).
	Apply(ctx context.Context, q postgres.Querier, ops []Op) (int64, error)
}

// ProductIDs dedup product id dari daftar item, urutan kemunculan pertama.
func ProductIDs(items []InventoryItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// PGStore implementasi Store di atas Postgres.
type PGStore struct{}

func NewPGStore() *PGStore { return &PGStore{} }

func (s *PGStore) LoadRecords(ctx context.Context, q postgres.Querier, productIDs []string, lock bool) (map[string]*StockRecord, error) {
	if len(productIDs) == 0 {
		return map[string]*StockRecord{}, nil
	}

	suffix := ""
	if lock {
		suffix = " FOR UPDATE"
	}

	query := `
		SELECT id, manage_stock, stock_qty, reserved_qty, stock_status,
		       backorders_allowed, COALESCE(low_stock_threshold, 0)
		FROM products
		WHERE id = any($1)` + suffix
	rows, err := q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*StockRecord, len(productIDs))
	for rows.Next() {
		var rec StockRecord
		var status string
		if err := rows.Scan(
			&rec.ProductID,
			&rec.ManageStock,
			&rec.StockQty,
			&rec.ReservedQty,
			&status,
			&rec.BackordersAllowed,
			&rec.LowStockThreshold,
		); err != nil {
			return nil, err
		}
		rec.StockStatus = StockStatus(status)
		result[rec.ProductID] = &rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	vq := `
		SELECT product_id, id, COALESCE(legacy_id, ''), stock_qty, reserved_qty
		FROM product_variants
		WHERE product_id = any($1)` + suffix
	vrows, err := q.Query(ctx, vq, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var pid string
		var v VariantRecord
		if err := vrows.Scan(&pid, &v.ID, &v.LegacyID, &v.StockQty, &v.ReservedQty); err != nil {
			return nil, err
		}
		if rec, ok := result[pid]; ok {
			rec.Variants = append(rec.Variants, v)
		}
	}
	return result, vrows.Err()
}

const (
	applyProductSQL = `
		UPDATE products
		SET stock_qty = stock_qty + $2,
		    reserved_qty = GREATEST(reserved_qty + $3, 0),
		    updated_at = now()
		WHERE id = $1`
	applyVariantSQL = `
		UPDATE product_variants
		SET stock_qty = stock_qty + $3,
		    reserved_qty = GREATEST(reserved_qty + $4, 0)
		WHERE product_id = $1 AND (id = $2 OR legacy_id = $2)`
)

func (s *PGStore) Apply(ctx context.Context, q postgres.Querier, ops []Op) (int64, error) {
	if len(ops) == 0 {
		return 0, nil
	}

	// Shape update product vs variant beda, jadi dipisah dua batch. Tetap
	// atomik selama q adalah pgx.Tx yang sama.
	var productOps, variantOps []Op
	for _, op := range ops {
		if op.IsVariant() {
			variantOps = append(variantOps, op)
		} else {
			productOps = append(productOps, op)
		}
	}

	var modified int64
	if len(productOps) > 0 {
		b := &pgx.Batch{}
		for _, op := range productOps {
			b.Queue(applyProductSQL, op.ProductID, op.DeltaStock, op.DeltaReserved)
		}
		n, err := sendBatch(ctx, q, b, len(productOps))
		if err != nil {
			return modified, err
		}
		modified += n
	}
	if len(variantOps) > 0 {
		b := &pgx.Batch{}
		for _, op := range variantOps {
			b.Queue(applyVariantSQL, op.ProductID, op.VariationID, op.DeltaStock, op.DeltaReserved)
		}
		n, err := sendBatch(ctx, q, b, len(variantOps))
		if err != nil {
			return modified, err
		}
		modified += n
	}
	return modified, nil
}

func sendBatch(ctx context.Context, q postgres.Querier, b *pgx.Batch, n int) (int64, error) {
	br := q.SendBatch(ctx, b)
	defer br.Close()

	var modified int64
	for i := 0; i < n; i++ {
		ct, err := br.Exec()
		if err != nil {
			return modified, fmt.Errorf("apply stock op: %w", err)
		}
		modified += ct.RowsAffected()
	}
	return modified, br.Close()
}
