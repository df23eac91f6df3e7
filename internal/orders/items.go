package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/catalog"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/stock"
)

// OrderStore adalah potongan Repo yang dipakai mutasi item. Interface supaya
// service-nya bisa dites dengan fake in-memory.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListItems(ctx context.Context, orderID string) ([]OrderItem, error)
	GetItem(ctx context.Context, orderID, itemID string) (*OrderItem, error)
	InsertItem(ctx context.Context, item *OrderItem) error
	DeleteItem(ctx context.Context, orderID, itemID string) error
	UpdateItemQuantity(ctx context.Context, orderID, itemID string, quantity int, total decimal.Decimal) error
	SaveTotals(ctx context.Context, orderID string, expectedVersion int, t Totals) error
}

// StockLedger adalah potongan ledger yang dipakai mutasi item (standalone,
// buka transaksi sendiri per operasi stok).
type StockLedger interface {
	CheckAvailability(ctx context.Context, productID, variationID string, qty int) (stock.Availability, error)
	Reserve(ctx context.Context, items []stock.InventoryItem) error
	Release(ctx context.Context, items []stock.InventoryItem) error
}

// PriceSource snapshot harga otoritatif untuk item yang baru ditambahkan.
type PriceSource interface {
	SnapshotPrice(ctx context.Context, productID, variationID string) (catalog.Snapshot, error)
}

// HistoryRecorder append audit entry, fire-and-forget: gagal nyatat tidak
// boleh memblokir mutasinya.
type HistoryRecorder interface {
	Record(ctx context.Context, orderID, action, description, actor string, metadata map[string]any)
}

// ItemService menangani add/remove/update-quantity item pada order yang masih
// editable, koordinasi dengan ledger untuk delta reservasi dan dengan
// TotalsFunc eksternal untuk rekalkulasi.
type ItemService struct {
	Store   OrderStore
	Ledger  StockLedger
	Prices  PriceSource
	Recalc  TotalsFunc
	History HistoryRecorder
	Log     *zap.Logger
}

type AddItemInput struct {
	ProductID   string
	VariationID string
	Quantity    int
	Actor       string
}

func (s *ItemService) editableOrder(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !IsEditable(o.Status) {
		return nil, ErrOrderNotEditable
	}
	return o, nil
}

func (s *ItemService) AddItem(ctx context.Context, orderID string, in AddItemInput) (*OrderItem, error) {
	if in.ProductID == "" || in.Quantity < 1 {
		return nil, ErrInvalidItemInput
	}
	order, err := s.editableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	av, err := s.Ledger.CheckAvailability(ctx, in.ProductID, in.VariationID, in.Quantity)
	if err != nil {
		return nil, err
	}
	if !av.CanFulfill {
		return nil, &stock.InsufficientStockError{
			ProductID:   in.ProductID,
			VariationID: in.VariationID,
			Requested:   in.Quantity,
			Available:   av.Available,
		}
	}

	if err := s.Ledger.Reserve(ctx, []stock.InventoryItem{{
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		Quantity:    in.Quantity,
	}}); err != nil {
		return nil, err
	}

	snap, err := s.Prices.SnapshotPrice(ctx, in.ProductID, in.VariationID)
	if err != nil {
		return nil, err
	}
	item := &OrderItem{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		ProductID:   in.ProductID,
		VariationID: in.VariationID,
		ProductName: snap.Name,
		Quantity:    in.Quantity,
		Price:       snap.Price,
		CostPrice:   snap.Cost,
		Total:       snap.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
	}
	if err := s.Store.InsertItem(ctx, item); err != nil {
		return nil, err
	}

	if err := s.persistTotals(ctx, order); err != nil {
		return nil, err
	}
	s.History.Record(ctx, order.ID, "item_added",
		"added "+item.ProductName, in.Actor,
		map[string]any{"item_id": item.ID, "product_id": item.ProductID, "quantity": item.Quantity})
	return item, nil
}

func (s *ItemService) RemoveItem(ctx context.Context, orderID, itemID, actor string) error {
	order, err := s.editableOrder(ctx, orderID)
	if err != nil {
		return err
	}
	item, err := s.Store.GetItem(ctx, orderID, itemID)
	if err != nil {
		return err
	}

	// Kebijakan asimetris yang disengaja: gagal release TIDAK memblokir
	// penghapusan item; pembukuan stok yang meleset lebih murah daripada
	// order yang tidak bisa diedit.
	if err := s.Ledger.Release(ctx, []stock.InventoryItem{{
		ProductID:   item.ProductID,
		VariationID: item.VariationID,
		Quantity:    item.Quantity,
	}}); err != nil {
		s.Log.Warn("stock release failed during item removal",
			zap.String("order_id", orderID),
			zap.String("item_id", itemID),
			zap.Error(err))
	}

	if err := s.Store.DeleteItem(ctx, orderID, itemID); err != nil {
		return err
	}
	if err := s.persistTotals(ctx, order); err != nil {
		return err
	}
	s.History.Record(ctx, order.ID, "item_removed",
		"removed "+item.ProductName, actor,
		map[string]any{"item_id": item.ID, "product_id": item.ProductID, "quantity": item.Quantity})
	return nil
}

func (s *ItemService) UpdateQuantity(ctx context.Context, orderID, itemID string, newQty int, actor string) error {
	if newQty < 1 {
		return ErrInvalidItemInput
	}
	order, err := s.editableOrder(ctx, orderID)
	if err != nil {
		return err
	}
	item, err := s.Store.GetItem(ctx, orderID, itemID)
	if err != nil {
		return err
	}

	delta := newQty - item.Quantity
	switch {
	case delta > 0:
		if err := s.Ledger.Reserve(ctx, []stock.InventoryItem{{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    delta,
		}}); err != nil {
			return err
		}
	case delta < 0:
		if err := s.Ledger.Release(ctx, []stock.InventoryItem{{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    -delta,
		}}); err != nil {
			return err
		}
	}

	newTotal := item.Price.Mul(decimal.NewFromInt(int64(newQty)))
	if err := s.Store.UpdateItemQuantity(ctx, orderID, itemID, newQty, newTotal); err != nil {
		return err
	}
	if err := s.persistTotals(ctx, order); err != nil {
		return err
	}
	s.History.Record(ctx, order.ID, "item_quantity_updated",
		"quantity changed for "+item.ProductName, actor,
		map[string]any{"item_id": item.ID, "old_quantity": item.Quantity, "new_quantity": newQty})
	return nil
}

func (s *ItemService) persistTotals(ctx context.Context, order *Order) error {
	items, err := s.Store.ListItems(ctx, order.ID)
	if err != nil {
		return err
	}
	totals := s.Recalc(items, order.ShippingTotal, order.DiscountTotal)
	return s.Store.SaveTotals(ctx, order.ID, order.Version, totals)
}
