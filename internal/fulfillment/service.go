// Package fulfillment adalah consumer-side: deduksi stok saat order selesai
// di-fulfill dan release saat order dibatalkan. Dua-duanya event-driven dan
// idempotent lewat dedup Redis.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/tranquoctam1292/shop-gau-bong-stock/internal/kafka"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/orders"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/redisx"
	"github.com/tranquoctam1292/shop-gau-bong-stock/internal/stock"
)

// StockLedger adalah potongan ledger yang dipakai consumer ini.
type StockLedger interface {
	Deduct(ctx context.Context, items []stock.InventoryItem) error
	Release(ctx context.Context, items []stock.InventoryItem) error
}

type Service struct {
	Ledger           StockLedger
	Redis            *redis.Client
	ProducerDeducted *kafkax.Producer // stock.deducted
	ProducerReleased *kafkax.Producer // stock.released
	ServiceName      string
	Log              *zap.Logger
}

// HandleOrderFulfilled deduksi stok untuk semua item order yang selesai.
// Product yang sudah dihapus di-skip oleh ledger (warning), bukan
// menggagalkan fulfillment item lain.
func (s *Service) HandleOrderFulfilled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderFulfilled {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderFulfilledPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Ledger.Deduct(ctx, p.Items); err != nil {
		s.Log.Error("deduct failed",
			zap.String("order_id", p.OrderID),
			zap.Error(err))
		return err
	}

	s.publish(s.ProducerDeducted, orders.EventStockDeducted, p.OrderID, env.TraceID,
		orders.StockDeductedPayload{OrderID: p.OrderID, Items: p.Items})
	return nil
}

// HandleOrderCancelled release reservasi order yang dibatalkan.
func (s *Service) HandleOrderCancelled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCancelled {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Ledger.Release(ctx, p.Items); err != nil {
		s.Log.Error("release failed",
			zap.String("order_id", p.OrderID),
			zap.Error(err))
		return err
	}

	s.publish(s.ProducerReleased, orders.EventStockReleased, p.OrderID, env.TraceID,
		orders.StockReleasedPayload{OrderID: p.OrderID, Items: p.Items})
	return nil
}

func (s *Service) seen(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, "fulfillment", eventID)
	exists, _ := redisx.Exists(ctx, s.Redis, key)
	if exists {
		return true
	}
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}

func (s *Service) publish(p *kafkax.Producer, eventType, orderID, trace string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
