package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Review mirrors the `reviews` table.  At most one review exists per
// (user, product, order).
type Review struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	ProductID  uint64    `json:"product_id"`
	OrderID    uint64    `json:"order_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UserName   string    `json:"user_name,omitempty"`
	UserAvatar string    `json:"user_avatar,omitempty"`
}

// ProductRating is the derived rating state of a product.
type ProductRating struct {
	ID      uint64          `json:"id"`
	Rating  decimal.Decimal `json:"rating"`
	Reviews int             `json:"reviews"`
}

// BlockedUser mirrors the optional `blocked_users` table.
type BlockedUser struct {
	ID            uint64    `json:"id"`
	Phone         string    `json:"phone"`
	Reason        string    `json:"reason"`
	BlockedBy     *uint64   `json:"blocked_by"`
	BlockedByName string    `json:"blocked_by_name,omitempty"`
	BlockedAt     time.Time `json:"blocked_at"`
}

// WishlistEntry is one product on a customer's wishlist.
type WishlistEntry struct {
	ID      uint64    `json:"wishlist_id"`
	AddedAt time.Time `json:"added_at"`
	Product
}

// MonthlyProfit is one month of delivered-order analytics.  Month is
// formatted YYYY-MM.
type MonthlyProfit struct {
	Month     string          `json:"month"`
	Profit    decimal.Decimal `json:"profit"`
	Sales     decimal.Decimal `json:"sales"`
	UnitsSold int             `json:"units_sold"`
}

// DeliveredTotals are all-time figures over delivered orders.  Sales is
// the sum of order totals, shipping included.
type DeliveredTotals struct {
	Profit    decimal.Decimal
	Sales     decimal.Decimal
	UnitsSold int
}

// Analytics is the profit report shown on the admin dashboard.
type Analytics struct {
	Months         []MonthlyProfit `json:"months"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalUnitsSold int             `json:"total_units_sold"`
}
