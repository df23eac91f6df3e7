package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/tranquoctam1292/shop-gau-bong-stock/internal/kafka"
)

// KafkaHistory kirim entry audit order ke topic history. Fire-and-forget:
// gagal marshal/publish cuma di-warn, mutasi yang dicatat jalan terus.
type KafkaHistory struct {
	Producer *kafkax.Producer
	Service  string
	Log      *zap.Logger
}

func (h *KafkaHistory) Record(ctx context.Context, orderID, action, description, actor string, metadata map[string]any) {
	payload, err := json.Marshal(OrderHistoryPayload{
		OrderID:     orderID,
		Action:      action,
		Description: description,
		Actor:       actor,
		Metadata:    metadata,
		At:          time.Now().UTC(),
	})
	if err != nil {
		h.Log.Warn("history payload marshal failed",
			zap.String("order_id", orderID),
			zap.String("action", action),
			zap.Error(err))
		return
	}

	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderHistory,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: orderID,
		Payload:       payload,
	}
	h.Producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderHistory)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// NopHistory untuk test / deployment tanpa broker.
type NopHistory struct{}

func (NopHistory) Record(context.Context, string, string, string, string, map[string]any) {}
