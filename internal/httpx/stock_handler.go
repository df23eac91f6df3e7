package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/tranquoctam1292/shop-gau-bong-stock/internal/kafka"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/orders"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/redisx"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/stock"
)

type StockHandler struct {
	Ledger         *stock.Ledger
	Redis          *redis.Client
	ProducerOK     *kafkax.Producer // stock.reserved
	ProducerReject *kafkax.Producer // stock.rejected
	Service        string
	Log            *zap.Logger
}

type stockOpReq struct {
	OrderID string                `json:"order_id,omitempty"`
	Items   []stock.InventoryItem `json:"items"`
}

func (h *StockHandler) Register(r *chi.Mux) {
	r.Post("/stock/reserve", h.reserve)
	r.Post("/stock/deduct", h.deduct)
	r.Post("/stock/release", h.release)
	r.Get("/stock/availability", h.availability)
}

func decodeStockOp(w http.ResponseWriter, r *http.Request) (stockOpReq, bool) {
	var req stockOpReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return req, false
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "each item needs product_id and quantity >= 1"})
			return req, false
		}
	}
	return req, true
}

func (h *StockHandler) reserve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStockOp(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Reserve(ctx, req.Items); err != nil {
		h.publishRejected(req.OrderID, r.Header.Get("X-Request-Id"), err)
		writeError(w, err)
		return
	}

	if req.OrderID != "" {
		h.publishEventTo(h.ProducerOK, orders.EventStockReserved, req.OrderID,
			r.Header.Get("X-Request-Id"),
			orders.StockReservedPayload{OrderID: req.OrderID, Items: req.Items})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reserved"})
}

func (h *StockHandler) deduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStockOp(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Deduct(ctx, req.Items); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deducted"})
}

func (h *StockHandler) release(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStockOp(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Release(ctx, req.Items); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

func (h *StockHandler) availability(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	variationID := r.URL.Query().Get("variation_id")
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if productID == "" || err != nil || qty < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "need product_id and quantity >= 1"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache TTL pendek; angka pasti tetap dicek ulang saat reserve
	cacheKey := fmt.Sprintf(redisx.KeyStockAvailability, productID, variationID)
	if cached, err := h.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var av stock.Availability
		if json.Unmarshal([]byte(cached), &av) == nil {
			av.CanFulfill = av.Available >= qty
			writeJSON(w, http.StatusOK, av)
			return
		}
	}

	av, err := h.Ledger.CheckAvailability(ctx, productID, variationID, qty)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Set(ctx, cacheKey, kafkax.MustMarshal(av), redisx.TTLAvailability).Err()
	writeJSON(w, http.StatusOK, av)
}

func (h *StockHandler) publishRejected(orderID, trace string, err error) {
	if orderID == "" {
		return
	}
	reason := "OUT_OF_STOCK"
	if stock.IsNotFound(err) {
		reason = "NOT_FOUND"
	}

	var details []orders.StockRejectedDetail
	for _, ise := range stock.InsufficientDetails(err) {
		details = append(details, orders.StockRejectedDetail{
			ProductID:   ise.ProductID,
			VariationID: ise.VariationID,
			Requested:   ise.Requested,
			Available:   ise.Available,
		})
	}

	h.publishEventTo(h.ProducerReject, orders.EventStockRejected, orderID, trace,
		orders.StockRejectedPayload{OrderID: orderID, Reason: reason, Details: details})
}

func (h *StockHandler) publishEventTo(p *kafkax.Producer, eventType, orderID, trace string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
