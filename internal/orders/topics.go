package orders

import "strconv"

const (
	TopicOrderPlaced        = "store.order.placed"
	TopicOrderStatusChanged = "store.order.status_changed"
	TopicStockLow           = "store.stock.low"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
