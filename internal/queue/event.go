// Package queue carries order events over RabbitMQ: the payload types, a
// publisher used after checkout commits and a consumer that keeps an
// append-only order log.
package queue

// OrderPlacedQueue is the durable queue order events are routed to.
const OrderPlacedQueue = "order.placed"

// OrderPlacedEvent is published once an order transaction has committed.
// It contains enough information for downstream consumers to log or
// notify without querying the primary database.  Amounts are decimal
// strings.
type OrderPlacedEvent struct {
	OrderID        uint64   `json:"order_id"`
	OrderNumber    string   `json:"order_number"`
	UserID         uint64   `json:"user_id"`
	AccountCreated bool     `json:"account_created"`
	Total          string   `json:"total"`
	ShippingCost   string   `json:"shipping_cost"`
	ItemCount      int      `json:"item_count"`
	Items          []string `json:"items"`
	PlacedAt       string   `json:"placed_at"`
}
