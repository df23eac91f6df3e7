package orders

const (
	TopicStockReserved  = "stock.reserved"
	TopicStockRejected  = "stock.rejected"
	TopicStockReleased  = "stock.released"
	TopicStockDeducted  = "stock.deducted"
	TopicOrderFulfilled = "order.fulfilled"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderHistory   = "order.history"
)

// Partition key = order_id supaya semua event satu order terjaga urutannya.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
