package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderLine references a record by ID (a weak reference: the record may
// be deleted later without touching the order) and snapshots its price
// at the time the order was placed.
type OrderLine struct {
	RecordID    string `json:"record_id"`
	Quantity    int    `json:"quantity"`
	PriceAtTime int64  `json:"price_at_time"`
}

// Order groups one or more lines placed together. TotalAmount is
// computed once at creation as the sum of line price × quantity and is
// never recomputed afterwards. Lines keep their request order.
type Order struct {
	ID          string      `json:"id"`
	Lines       []OrderLine `json:"lines"`
	TotalAmount int64       `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	Created     time.Time   `json:"created"`
}
