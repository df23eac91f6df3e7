package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{external_id} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Dedup event processing di consumer fulfillment: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cache availability pre-check: stock_avail:{product_id}:{variation_id}
	// TTL pendek; kebenaran tetap di Postgres.
	KeyStockAvailability = "stock_avail:%s:%s"
)

var (
	TTLIdempotency  = 24 * time.Hour
	TTLDedup        = 48 * time.Hour
	TTLAvailability = 15 * time.Second
)
