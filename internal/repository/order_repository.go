package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
)

// OrderRepo provides persistence for orders and their line items.  Orders
// are only created through the checkout workflow; afterwards status is
// the only mutable column.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `o.id, o.user_id, o.order_number, o.total_amount, o.shipping_cost, o.status,
	o.shipping_name, o.shipping_email, o.shipping_phone, o.shipping_address, o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }, extra ...any) (model.Order, error) {
	var o model.Order
	dest := []any{&o.ID, &o.UserID, &o.OrderNumber, &o.TotalAmount, &o.ShippingCost, &o.Status,
		&o.ShippingName, &o.ShippingEmail, &o.ShippingPhone, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return o, err
}

// CreateTx inserts the order header and sets its ID.  A clash on
// order_number yields ErrDuplicateOrderNumber.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (user_id, order_number, total_amount, shipping_cost, status,
		shipping_name, shipping_email, shipping_phone, shipping_address) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, o.UserID, o.OrderNumber, o.TotalAmount, o.ShippingCost, o.Status,
		o.ShippingName, o.ShippingEmail, o.ShippingPhone, o.ShippingAddress)
	if err != nil {
		return classifyDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CreateItemTx inserts one line item and sets its ID.
func (r *OrderRepo) CreateItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	const q = `INSERT INTO order_items (order_id, product_id, product_name, product_price, buying_price, quantity, subtotal)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, it.OrderID, it.ProductID, it.ProductName, it.ProductPrice,
		it.BuyingPrice, it.Quantity, it.Subtotal)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// StatusForUserTx returns the status of an order owned by userID.  found
// is false when the order does not exist or belongs to someone else.
func (r *OrderRepo) StatusForUserTx(ctx context.Context, tx *sql.Tx, orderID, userID uint64) (string, bool, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = ? AND user_id = ?`, orderID, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// HasProductTx reports whether productID is one of the order's line items.
func (r *OrderRepo) HasProductTx(ctx context.Context, tx *sql.Tx, orderID, productID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM order_items WHERE order_id = ? AND product_id = ? LIMIT 1`, orderID, productID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// itemsFor loads the line items of the given orders keyed by order id.
func (r *OrderRepo) itemsFor(ctx context.Context, orderIDs []uint64) (map[uint64][]model.OrderItem, error) {
	out := map[uint64][]model.OrderItem{}
	if len(orderIDs) == 0 {
		return out, nil
	}
	q := `SELECT oi.id, oi.order_id, oi.product_id, oi.product_name, oi.product_price, oi.buying_price,
		oi.quantity, oi.subtotal, COALESCE(p.image, '')
		FROM order_items oi LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id IN (?` + strings.Repeat(",?", len(orderIDs)-1) + `) ORDER BY oi.id`
	args := lo.Map(orderIDs, func(id uint64, _ int) any { return id })
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		var pid sql.NullInt64
		var buying decimal.NullDecimal
		if err := rows.Scan(&it.ID, &it.OrderID, &pid, &it.ProductName, &it.ProductPrice, &buying,
			&it.Quantity, &it.Subtotal, &it.ProductImage); err != nil {
			return nil, err
		}
		if pid.Valid {
			id := uint64(pid.Int64)
			it.ProductID = &id
		}
		it.BuyingPrice = buying.Decimal
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (r *OrderRepo) withItems(ctx context.Context, orders []model.Order) error {
	items, err := r.itemsFor(ctx, lo.Map(orders, func(o model.Order, _ int) uint64 { return o.ID }))
	if err != nil {
		return err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
		orders[i].ItemsCount = len(orders[i].Items)
	}
	return nil
}

// ListByUser returns a customer's orders with their items, newest first.
// An empty status returns every order.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64, status string) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = ?`
	args := []any{userID}
	if status != "" {
		q += ` AND o.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY o.created_at DESC, o.id DESC`
	orders, err := r.list(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if err := r.withItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetForUser returns one order with items if it belongs to userID.
func (r *OrderRepo) GetForUser(ctx context.Context, id, userID uint64) (model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = ? AND o.user_id = ?`, id, userID)
}

// GetByID returns one order with items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = ?`, id)
}

func (r *OrderRepo) getOne(ctx context.Context, q string, args ...any) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOrderNotFound
	}
	if err != nil {
		return o, err
	}
	orders := []model.Order{o}
	if err := r.withItems(ctx, orders); err != nil {
		return o, err
	}
	return orders[0], nil
}

func (r *OrderRepo) list(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListAll returns every order with item counts and item totals for the
// back office.  An empty status returns every order.
func (r *OrderRepo) ListAll(ctx context.Context, status string) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + `,
		(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id),
		(SELECT COALESCE(SUM(oi.subtotal), 0) FROM order_items oi WHERE oi.order_id = o.id)
		FROM orders o`
	var args []any
	if status != "" {
		q += ` WHERE o.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY o.created_at DESC, o.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		var count int
		var total decimal.Decimal
		o, err := scanOrder(rows, &count, &total)
		if err != nil {
			return nil, err
		}
		o.ItemsCount, o.ItemsTotal = count, &total
		out = append(out, o)
	}
	return out, rows.Err()
}

// countByStatus returns order counts and amount sums per status.
func (r *OrderRepo) countByStatus(ctx context.Context, where string, args ...any) (map[string]int, map[string]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	sums := map[string]decimal.Decimal{}
	for rows.Next() {
		var s string
		var n int
		var sum decimal.Decimal
		if err := rows.Scan(&s, &n, &sum); err != nil {
			return nil, nil, err
		}
		counts[s], sums[s] = n, sum
	}
	return counts, sums, rows.Err()
}

// StatsForUser counts a customer's orders per status.
func (r *OrderRepo) StatsForUser(ctx context.Context, userID uint64) (model.CustomerOrderStats, error) {
	counts, _, err := r.countByStatus(ctx, ` WHERE user_id = ?`, userID)
	if err != nil {
		return model.CustomerOrderStats{}, err
	}
	return model.CustomerOrderStats{
		Total:      lo.Sum(lo.Values(counts)),
		Pending:    counts[model.OrderPending],
		Processing: counts[model.OrderProcessing],
		Shipped:    counts[model.OrderShipped],
		Delivered:  counts[model.OrderDelivered],
		Cancelled:  counts[model.OrderCancelled],
	}, nil
}

// AdminStats summarises every order.  Sales only count delivered orders.
func (r *OrderRepo) AdminStats(ctx context.Context) (model.AdminOrderStats, error) {
	counts, sums, err := r.countByStatus(ctx, "")
	if err != nil {
		return model.AdminOrderStats{}, err
	}
	return model.AdminOrderStats{
		TotalOrders:      lo.Sum(lo.Values(counts)),
		PendingOrders:    counts[model.OrderPending],
		ProcessingOrders: counts[model.OrderProcessing],
		ShippedOrders:    counts[model.OrderShipped],
		DeliveredOrders:  counts[model.OrderDelivered],
		CancelledOrders:  counts[model.OrderCancelled],
		TotalSales:       sums[model.OrderDelivered],
		CancelledSales:   sums[model.OrderCancelled],
	}, nil
}

// UpdateStatus sets the status of an order.  Any valid status may replace
// any other.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrOrderNotFound)
}

// ResetAll deletes every review, order item and order in one transaction,
// children first, and zeroes the derived product ratings.
func (r *OrderRepo) ResetAll(ctx context.Context) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"reviews", "order_items", "orders"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, "UPDATE products SET rating = 0, reviews = 0")
		return err
	})
}
