package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/halchash/storefront/internal/model"
)

// AnalyticsRepo aggregates delivered orders for the profit report.
type AnalyticsRepo struct {
	db *sql.DB
}

// NewAnalyticsRepo returns a new AnalyticsRepo bound to the given database.
func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

// itemProfit is zero for items sold without a recorded cost basis.
const itemProfit = `CASE
	WHEN oi.buying_price IS NULL OR oi.buying_price = 0 THEN 0
	ELSE (oi.product_price - oi.buying_price) * oi.quantity
END`

// MonthlyDelivered returns one row per month since `since` that has
// delivered orders.  Profit is the raw sum, so a month can be negative.
func (r *AnalyticsRepo) MonthlyDelivered(ctx context.Context, since time.Time) ([]model.MonthlyProfit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DATE_FORMAT(o.created_at, '%Y-%m') AS month,
			COALESCE(SUM(`+itemProfit+`), 0),
			COALESCE(SUM(oi.subtotal), 0),
			COALESCE(SUM(oi.quantity), 0)
		FROM orders o JOIN order_items oi ON oi.order_id = o.id
		WHERE o.status = 'delivered' AND o.created_at >= ?
		GROUP BY month ORDER BY month`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MonthlyProfit{}
	for rows.Next() {
		var m model.MonthlyProfit
		if err := rows.Scan(&m.Month, &m.Profit, &m.Sales, &m.UnitsSold); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeliveredTotals sums profit and units over every delivered order item and
// order totals over every delivered order.
func (r *AnalyticsRepo) DeliveredTotals(ctx context.Context) (model.DeliveredTotals, error) {
	var t model.DeliveredTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(`+itemProfit+`), 0), COALESCE(SUM(oi.quantity), 0)
		FROM orders o JOIN order_items oi ON oi.order_id = o.id
		WHERE o.status = 'delivered'`).Scan(&t.Profit, &t.UnitsSold)
	if err != nil {
		return t, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'delivered'`).Scan(&t.Sales)
	return t, err
}
