package stock

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/postgres"
)

// Ledger adalah satu-satunya jalur mutasi stok di sistem ini. Semua operasi
// punya dua bentuk: standalone (buka transaksi sendiri) dan ...Tx (ikut
// transaksi caller, misal reservasi yang harus atomik dengan create order).
type Ledger struct {
	db    *pgxpool.Pool
	store Store
	log   *zap.Logger
}

func NewLedger(db *pgxpool.Pool, store Store, log *zap.Logger) *Ledger {
	return &Ledger{db: db, store: store, log: log}
}

// Availability adalah hasil pre-check read-only, tanpa mutasi.
type Availability struct {
	CanFulfill bool `json:"can_fulfill"`
	Available  int  `json:"available"`
	LowStock   bool `json:"low_stock"`
}

func (l *Ledger) Reserve(ctx context.Context, items []InventoryItem) error {
	return postgres.WithTx(ctx, l.db, func(tx pgx.Tx) error {
		return l.ReserveTx(ctx, tx, items)
	})
}

func (l *Ledger) Deduct(ctx context.Context, items []InventoryItem) error {
	return postgres.WithTx(ctx, l.db, func(tx pgx.Tx) error {
		return l.DeductTx(ctx, tx, items)
	})
}

func (l *Ledger) Release(ctx context.Context, items []InventoryItem) error {
	return postgres.WithTx(ctx, l.db, func(tx pgx.Tx) error {
		return l.ReleaseTx(ctx, tx, items)
	})
}

// ReserveTx validasi availability lalu naikkan reserved_qty per item.
// Product yang tidak ada = fatal, tidak ada efek parsial.
func (l *Ledger) ReserveTx(ctx context.Context, q postgres.Querier, items []InventoryItem) error {
	return l.apply(ctx, q, VerbReserve, items, false)
}

// DeductTx konsumsi final: turunkan stock_qty dan reserved_qty sekaligus.
// Jalan pasca-commit (fulfillment), jadi product yang sudah dihapus cuma
// di-warn dan di-skip, bukan menggagalkan item lain yang masih hidup.
func (l *Ledger) DeductTx(ctx context.Context, q postgres.Querier, items []InventoryItem) error {
	return l.apply(ctx, q, VerbDeduct, items, true)
}

// ReleaseTx turunkan reserved_qty tanpa cek availability; hasil negatif
// di-clamp ke 0 di layer store.
func (l *Ledger) ReleaseTx(ctx context.Context, q postgres.Querier, items []InventoryItem) error {
	return l.apply(ctx, q, VerbRelease, items, false)
}

func (l *Ledger) apply(ctx context.Context, q postgres.Querier, verb Verb, items []InventoryItem, tolerateMissing bool) error {
	if len(items) == 0 {
		return nil
	}

	records, err := l.store.LoadRecords(ctx, q, ProductIDs(items), true)
	if err != nil {
		return err
	}

	checked := items
	if tolerateMissing {
		checked = make([]InventoryItem, 0, len(items))
		for _, it := range items {
			if _, ok := records[it.ProductID]; !ok {
				l.log.Warn("skipping missing product",
					zap.String("verb", string(verb)),
					zap.String("product_id", it.ProductID))
				continue
			}
			checked = append(checked, it)
		}
	}

	ops, err := BuildOps(verb, checked, records)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}

	modified, err := l.store.Apply(ctx, q, ops)
	if err != nil {
		return err
	}
	if modified != int64(len(ops)) {
		return &ConcurrentModificationError{Submitted: len(ops), Modified: modified}
	}
	return nil
}

// CheckAvailability pre-check sebelum reserve, buat pesan ke user. Read-only.
func (l *Ledger) CheckAvailability(ctx context.Context, productID, variationID string, qty int) (Availability, error) {
	records, err := l.store.LoadRecords(ctx, l.db, []string{productID}, false)
	if err != nil {
		return Availability{}, err
	}
	rec, ok := records[productID]
	if !ok {
		return Availability{}, &NotFoundError{ProductID: productID}
	}

	if !rec.ManageStock {
		return Availability{CanFulfill: true, Available: rec.Available()}, nil
	}

	available := rec.Available()
	if variationID != "" {
		v := rec.FindVariant(variationID)
		if v == nil {
			return Availability{CanFulfill: false, Available: 0}, nil
		}
		available = v.Available()
	}

	return Availability{
		CanFulfill: available >= qty,
		Available:  available,
		LowStock:   rec.IsLowStock(),
	}, nil
}
