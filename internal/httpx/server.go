package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/orders"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/stock"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError petakan taksonomi error core ke status client/server. Error
// insufficient-stock bawa angka available supaya caller bisa kasih pesan
// yang actionable.
func writeError(w http.ResponseWriter, err error) {
	if details := stock.InsufficientDetails(err); len(details) > 0 {
		items := make([]map[string]any, 0, len(details))
		for _, d := range details {
			items = append(items, map[string]any{
				"product_id":   d.ProductID,
				"variation_id": d.VariationID,
				"requested":    d.Requested,
				"available":    d.Available,
			})
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "insufficient_stock",
			"items": items,
		})
		return
	}

	var nfe *stock.NotFoundError
	switch {
	case errors.As(err, &nfe):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "product_not_found", "product_id": nfe.ProductID,
		})
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, orders.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrOrderNotEditable):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "retry": "reload and retry"})
	case errors.Is(err, orders.ErrInvalidItemInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		var cme *stock.ConcurrentModificationError
		if errors.As(err, &cme) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "retry": "reload and retry"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
