package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/orders"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/redisx"
)

type OrdersHandler struct {
	Repo    *orders.Repo
	Items   *orders.ItemService
	Redis   *redis.Client
	Service string
	Log     *zap.Logger
}

type CreateOrderReq struct {
	ExternalID string             `json:"external_id"`
	UserID     string             `json:"user_id"`
	Lines      []orders.LineInput `json:"lines"`
	Shipping   decimal.Decimal    `json:"shipping"`
	Discount   decimal.Decimal    `json:"discount"`
}

type CreateOrderResp struct {
	OrderID    string          `json:"order_id"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Idempotent bool            `json:"idempotent"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/items", h.addItem)
	r.Patch("/orders/{id}/items/{itemID}", h.updateQuantity)
	r.Delete("/orders/{id}/items/{itemID}", h.removeItem)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ExternalID == "" || req.UserID == "" || len(req.Lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, existed, err := h.Repo.CreateOrder(ctx, orders.CreateOrderInput{
		ExternalID: req.ExternalID,
		UserID:     req.UserID,
		Lines:      req.Lines,
		Shipping:   req.Shipping,
		Discount:   req.Discount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// shortcut idempotency di Redis; kebenaran tetap di DB (CreateOrder
	// sendiri sudah cek external_id)
	idemKey := fmt.Sprintf(redisx.KeyIdemOrderCreate, req.ExternalID)
	_ = h.Redis.Set(ctx, idemKey, order.ID, redisx.TTLIdempotency).Err()

	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, CreateOrderResp{
		OrderID:    order.ID,
		GrandTotal: order.GrandTotal,
		Idempotent: existed,
	})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Repo.GetOrder(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.Repo.ListItems(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order, "items": items})
}

type addItemReq struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
}

func (h *OrdersHandler) addItem(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.Items.AddItem(ctx, orderID, orders.AddItemInput{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    req.Quantity,
		Actor:       actor(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type updateQtyReq struct {
	Quantity int `json:"quantity"`
}

func (h *OrdersHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")
	var req updateQtyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.UpdateQuantity(ctx, orderID, itemID, req.Quantity, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *OrdersHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.RemoveItem(ctx, orderID, itemID, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// actor diambil dari header auth layer di depan; authorization bukan urusan
// core ini.
func actor(r *http.Request) string {
	if a := r.Header.Get("X-Actor"); a != "" {
		return a
	}
	return "system"
}
