package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/catalog"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/postgres"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/stock"
)

// TxLedger adalah potongan ledger yang dibutuhkan create order: reservasi
// yang ikut transaksi yang sama dengan insert order + items.
type TxLedger interface {
	ReserveTx(ctx context.Context, q postgres.Querier, items []stock.InventoryItem) error
}

type LineInput struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

type CreateOrderInput struct {
	ExternalID string
	UserID     string
	Lines      []LineInput
	Shipping   decimal.Decimal
	Discount   decimal.Decimal
}

type Repo struct {
	DB      *pgxpool.Pool
	Catalog *catalog.PG
	Ledger  TxLedger
	Recalc  TotalsFunc
}

// CreateOrder: insert order -> insert items -> reserve stok, SEMUA lewat satu
// transaksi. Reservasi gagal (stok kurang / product hilang) = order dan
// item-nya tidak pernah ada. Idempotent by external_id seperti biasa.
func (r *Repo) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, bool, error) {
	if existing, err := r.findByExternalID(ctx, in.ExternalID); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, true, nil
	}

	for _, l := range in.Lines {
		if l.ProductID == "" || l.Quantity < 1 {
			return nil, false, ErrInvalidItemInput
		}
	}

	ids := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.ProductID)
	}

	var order *Order
	err := postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		// harga dari katalog, bukan dari client
		products, err := r.Catalog.Lookup(ctx, tx, ids)
		if err != nil {
			return err
		}

		orderID := uuid.NewString()
		items := make([]OrderItem, 0, len(in.Lines))
		invItems := make([]stock.InventoryItem, 0, len(in.Lines))
		for _, l := range in.Lines {
			p, ok := products[l.ProductID]
			if !ok {
				return &stock.NotFoundError{ProductID: l.ProductID}
			}
			snap := p.SnapshotFor(l.VariationID)
			items = append(items, OrderItem{
				ID:          uuid.NewString(),
				OrderID:     orderID,
				ProductID:   l.ProductID,
				VariationID: l.VariationID,
				ProductName: snap.Name,
				Quantity:    l.Quantity,
				Price:       snap.Price,
				CostPrice:   snap.Cost,
				Total:       snap.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
			})
			invItems = append(invItems, stock.InventoryItem{
				ProductID:   l.ProductID,
				VariationID: l.VariationID,
				Quantity:    l.Quantity,
			})
		}

		totals := r.Recalc(items, in.Shipping, in.Discount)
		now := time.Now().UTC()
		order = &Order{
			ID:            orderID,
			ExternalID:    in.ExternalID,
			UserID:        in.UserID,
			Status:        StatusPending,
			Version:       1,
			Subtotal:      totals.Subtotal,
			TaxTotal:      totals.TaxTotal,
			ShippingTotal: totals.ShippingTotal,
			DiscountTotal: totals.DiscountTotal,
			GrandTotal:    totals.GrandTotal,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO orders (id, external_id, user_id, status, version,
			                    subtotal, tax_total, shipping_total, discount_total, grand_total,
			                    created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			order.ID, order.ExternalID, order.UserID, string(order.Status), order.Version,
			order.Subtotal, order.TaxTotal, order.ShippingTotal, order.DiscountTotal, order.GrandTotal,
			order.CreatedAt, order.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range items {
			if err := insertItem(ctx, tx, &it); err != nil {
				return err
			}
		}

		// reservasi ikut transaksi ini; gagal = rollback semua
		return r.Ledger.ReserveTx(ctx, tx, invItems)
	})
	if err != nil {
		return nil, false, err
	}
	return order, false, nil
}

func (r *Repo) findByExternalID(ctx context.Context, externalID string) (*Order, error) {
	row := r.DB.QueryRow(ctx, selectOrderSQL+` WHERE external_id = $1`, externalID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

const selectOrderSQL = `
	SELECT id, external_id, user_id, status, version,
	       subtotal, tax_total, shipping_total, discount_total, grand_total,
	       created_at, updated_at
	FROM orders`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	if err := row.Scan(
		&o.ID, &o.ExternalID, &o.UserID, &status, &o.Version,
		&o.Subtotal, &o.TaxTotal, &o.ShippingTotal, &o.DiscountTotal, &o.GrandTotal,
		&o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, selectOrderSQL+` WHERE id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (r *Repo) ListItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, COALESCE(variation_id, ''), product_name,
		       quantity, price, cost_price, total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariationID,
			&it.ProductName, &it.Quantity, &it.Price, &it.CostPrice, &it.Total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repo) GetItem(ctx context.Context, orderID, itemID string) (*OrderItem, error) {
	var it OrderItem
	err := r.DB.QueryRow(ctx, `
		SELECT id, order_id, product_id, COALESCE(variation_id, ''), product_name,
		       quantity, price, cost_price, total
		FROM order_items
		WHERE order_id = $1 AND id = $2`, orderID, itemID).
		Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariationID,
			&it.ProductName, &it.Quantity, &it.Price, &it.CostPrice, &it.Total)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) InsertItem(ctx context.Context, item *OrderItem) error {
	return insertItem(ctx, r.DB, item)
}

func insertItem(ctx context.Context, q postgres.Querier, item *OrderItem) error {
	_, err := q.Exec(ctx, `
		INSERT INTO order_items (id, order_id, product_id, variation_id, product_name,
		                         quantity, price, cost_price, total)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,$9)`,
		item.ID, item.OrderID, item.ProductID, item.VariationID, item.ProductName,
		item.Quantity, item.Price, item.CostPrice, item.Total)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *Repo) DeleteItem(ctx context.Context, orderID, itemID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1 AND id = $2`, orderID, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) UpdateItemQuantity(ctx context.Context, orderID, itemID string, quantity int, total decimal.Decimal) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE order_items SET quantity = $3, total = $4
		WHERE order_id = $1 AND id = $2`, orderID, itemID, quantity, total)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SaveTotals tulis totals baru dengan predicate version (optimistic lock
// beneran, bukan sekadar increment buta). 0 row = ada edit konkuren.
func (r *Repo) SaveTotals(ctx context.Context, orderID string, expectedVersion int, t Totals) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET subtotal = $3, tax_total = $4, shipping_total = $5,
		    discount_total = $6, grand_total = $7,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2`,
		orderID, expectedVersion,
		t.Subtotal, t.TaxTotal, t.ShippingTotal, t.DiscountTotal, t.GrandTotal)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// SetStatus pindahkan status order dengan validasi transisi.
func (r *Repo) SetStatus(ctx context.Context, orderID string, to Status) error {
	o, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := ValidateTransition(o.Status, to); err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`,
		orderID, string(o.Status), string(to))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}
