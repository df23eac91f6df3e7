// Package catalog adalah read-side ke data katalog yang otoritatif. Harga
// TIDAK PERNAH dipercaya dari input client; semua snapshot harga order item
// diambil dari sini.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/postgres"
)

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	SalePrice *decimal.Decimal
	CostPrice *decimal.Decimal
	Variants  []Variant
}

type Variant struct {
	ID        string
	LegacyID  string
	Price     *decimal.Decimal
	CostPrice *decimal.Decimal
}

// Snapshot adalah harga/nama yang dibekukan ke order item saat dibuat.
type Snapshot struct {
	Name  string
	Price decimal.Decimal
	Cost  *decimal.Decimal
}

func (p *Product) findVariant(variationID string) *Variant {
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == variationID || (v.LegacyID != "" && v.LegacyID == variationID) {
			return v
		}
	}
	return nil
}

// SnapshotFor pilih harga efektif: sale price kalau ada, harga variant lebih
// diprioritaskan daripada harga parent product.
func (p *Product) SnapshotFor(variationID string) Snapshot {
	price := p.Price
	if p.SalePrice != nil {
		price = *p.SalePrice
	}
	cost := p.CostPrice
	if variationID != "" {
		if v := p.findVariant(variationID); v != nil {
			if v.Price != nil {
				price = *v.Price
			}
			if v.CostPrice != nil {
				cost = v.CostPrice
			}
		}
	}
	return Snapshot{Name: p.Name, Price: price, Cost: cost}
}

// PG baca katalog dari Postgres.
type PG struct {
	DB *pgxpool.Pool
}

func NewPG(db *pgxpool.Pool) *PG { return &PG{DB: db} }

// Lookup batch-load product + variant by id lewat querier caller (bisa tx).
func (c *PG) Lookup(ctx context.Context, q postgres.Querier, productIDs []string) (map[string]*Product, error) {
	if len(productIDs) == 0 {
		return map[string]*Product{}, nil
	}

	rows, err := q.Query(ctx, `
		SELECT id, name, price, sale_price, cost_price
		FROM products
		WHERE id = any($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*Product, len(productIDs))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.SalePrice, &p.CostPrice); err != nil {
			return nil, err
		}
		result[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	vrows, err := q.Query(ctx, `
		SELECT product_id, id, COALESCE(legacy_id, ''), price, cost_price
		FROM product_variants
		WHERE product_id = any($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("lookup variants: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var pid string
		var v Variant
		if err := vrows.Scan(&pid, &v.ID, &v.LegacyID, &v.Price, &v.CostPrice); err != nil {
			return nil, err
		}
		if p, ok := result[pid]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return result, vrows.Err()
}

// SnapshotPrice ambil snapshot satu product/variant, standalone (tanpa tx).
func (c *PG) SnapshotPrice(ctx context.Context, productID, variationID string) (Snapshot, error) {
	products, err := c.Lookup(ctx, c.DB, []string{productID})
	if err != nil {
		return Snapshot{}, err
	}
	p, ok := products[productID]
	if !ok {
		return Snapshot{}, fmt.Errorf("product not found: %s", productID)
	}
	return p.SnapshotFor(variationID), nil
}
