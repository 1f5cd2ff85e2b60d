package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.  Any status may be changed to any other by an admin.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// OrderStatuses lists every valid order status in lifecycle order.
var OrderStatuses = []string{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

// ValidOrderStatus reports whether s is one of OrderStatuses.
func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order mirrors the `orders` table.  The Shipping* fields are a snapshot
// of the checkout payload and never follow later profile edits.
type Order struct {
	ID              uint64          `json:"id"`
	UserID          uint64          `json:"user_id"`
	OrderNumber     string          `json:"order_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Status          string          `json:"status"`
	ShippingName    string          `json:"shipping_name"`
	ShippingEmail   string          `json:"shipping_email"`
	ShippingPhone   string          `json:"shipping_phone"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	ItemsCount int              `json:"items_count"`
	ItemsTotal *decimal.Decimal `json:"items_total,omitempty"`
	Items      []OrderItem      `json:"items,omitempty"`
}

// OrderItem mirrors the `order_items` table.  ProductID is nil once the
// referenced product no longer exists.  Subtotal is fixed at insert time.
type OrderItem struct {
	ID           uint64          `json:"id"`
	OrderID      uint64          `json:"order_id"`
	ProductID    *uint64         `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	BuyingPrice  decimal.Decimal `json:"-"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`

	ProductImage string `json:"product_image,omitempty"`
	Reviewed     *bool  `json:"reviewed,omitempty"`
}

// CustomerOrderStats counts a customer's orders per status.
type CustomerOrderStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Shipped    int `json:"shipped"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`
}

// AdminOrderStats summarises every order for the back office.
type AdminOrderStats struct {
	TotalOrders      int             `json:"total_orders"`
	PendingOrders    int             `json:"pending_orders"`
	ProcessingOrders int             `json:"processing_orders"`
	ShippedOrders    int             `json:"shipped_orders"`
	DeliveredOrders  int             `json:"delivered_orders"`
	CancelledOrders  int             `json:"cancelled_orders"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	CancelledSales   decimal.Decimal `json:"cancelled_sales"`
}
