package orders

import (
	"encoding/json"
	"time"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/stock"
)

const (
	EventStockReserved  = "StockReserved"
	EventStockRejected  = "StockRejected"
	EventStockReleased  = "StockReleased"
	EventStockDeducted  = "StockDeducted"
	EventOrderFulfilled = "OrderFulfilled"
	EventOrderCancelled = "OrderCancelled"
	EventOrderHistory   = "OrderHistoryAppended"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type StockReservedPayload struct {
	OrderID string                `json:"order_id"`
	Items   []stock.InventoryItem `json:"items"`
}

type StockRejectedDetail struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

type StockRejectedPayload struct {
	OrderID string                `json:"order_id"`
	Reason  string                `json:"reason"` // e.g. OUT_OF_STOCK, NOT_FOUND
	Details []StockRejectedDetail `json:"details,omitempty"`
}

type StockReleasedPayload struct {
	OrderID string                `json:"order_id"`
	Items   []stock.InventoryItem `json:"items"`
}

type StockDeductedPayload struct {
	OrderID string                `json:"order_id"`
	Items   []stock.InventoryItem `json:"items"`
}

type OrderFulfilledPayload struct {
	OrderID string                `json:"order_id"`
	Items   []stock.InventoryItem `json:"items"`
}

type OrderCancelledPayload struct {
	OrderID string                `json:"order_id"`
	Items   []stock.InventoryItem `json:"items"`
	Reason  string                `json:"reason,omitempty"`
}

type OrderHistoryPayload struct {
	OrderID     string         `json:"order_id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Actor       string         `json:"actor"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	At          time.Time      `json:"at"`
}
