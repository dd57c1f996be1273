package domain

import "time"

// OrderCreatedEvent is published to Kafka after an order has been
// persisted. Consumers must treat the stock state as already mutated.
type OrderCreatedEvent struct {
	OrderID     string      `json:"order_id"`
	Lines       []OrderLine `json:"lines"`
	TotalAmount int64       `json:"total_amount"`
	Timestamp   time.Time   `json:"timestamp"`
}
