package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/halchash/storefront/internal/model"
)

// ReviewRepo stores product reviews.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ExistsTx reports whether the user already reviewed productID for orderID.
func (r *ReviewRepo) ExistsTx(ctx context.Context, tx *sql.Tx, userID, productID, orderID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM reviews WHERE user_id = ? AND product_id = ? AND order_id = ? LIMIT 1`,
		userID, productID, orderID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CreateTx inserts rv and sets its ID.  The unique key on (user, product,
// order) surfaces as ErrDuplicate.
func (r *ReviewRepo) CreateTx(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (user_id, product_id, order_id, rating, comment) VALUES (?, ?, ?, ?, ?)`,
		rv.UserID, rv.ProductID, rv.OrderID, rv.Rating, rv.Comment)
	if err != nil {
		return classifyDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// ListByProduct returns a product's reviews with reviewer names, newest first.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.product_id, r.order_id, r.rating, COALESCE(r.comment, ''), r.created_at,
		COALESCE(u.name, ''), COALESCE(u.avatar, '')
		FROM reviews r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.product_id = ? ORDER BY r.created_at DESC, r.id DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.OrderID, &rv.Rating, &rv.Comment,
			&rv.CreatedAt, &rv.UserName, &rv.UserAvatar); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// ReviewedKey identifies a reviewed (order, product) pair.
type ReviewedKey struct {
	OrderID   uint64
	ProductID uint64
}

// ReviewedBy returns the set of (order, product) pairs the user reviewed.
func (r *ReviewRepo) ReviewedBy(ctx context.Context, userID uint64) (map[ReviewedKey]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT order_id, product_id FROM reviews WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[ReviewedKey]bool{}
	for rows.Next() {
		var k ReviewedKey
		if err := rows.Scan(&k.OrderID, &k.ProductID); err != nil {
			return nil, err
		}
		out[k] = true
	}
	return out, rows.Err()
}
