package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/halchash/storefront/internal/model"
)

// WishlistRepo stores (user, product) wishlist pairs.
type WishlistRepo struct {
	db *sql.DB
}

// NewWishlistRepo returns a new WishlistRepo bound to the given database.
func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{db: db} }

// List returns the active products on a user's wishlist, newest first.
func (r *WishlistRepo) List(ctx context.Context, userID uint64) ([]model.WishlistEntry, error) {
	q := `SELECT w.id, w.created_at, ` + productSelect[len("SELECT "):] + `
		JOIN wishlist w ON w.product_id = p.id
		WHERE w.user_id = ? AND p.is_active = 1
		ORDER BY w.created_at DESC, w.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.WishlistEntry{}
	for rows.Next() {
		var e model.WishlistEntry
		var wid uint64
		var added sql.NullTime
		p, err := scanProduct(prefixScanner{rows, []any{&wid, &added}})
		if err != nil {
			return nil, err
		}
		e.ID, e.AddedAt, e.Product = wid, added.Time, p
		out = append(out, e)
	}
	return out, rows.Err()
}

// prefixScanner prepends extra destinations to a Scan call so that a
// shared scan helper can read rows that carry leading columns.
type prefixScanner struct {
	rows   *sql.Rows
	prefix []any
}

func (s prefixScanner) Scan(dest ...any) error {
	return s.rows.Scan(append(s.prefix, dest...)...)
}

// Add puts an active product on the user's wishlist.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM products WHERE id = ? AND is_active = 1`, productID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlist (user_id, product_id) VALUES (?, ?)`, userID, productID); err != nil {
		if _, dup := duplicateKey(err); dup {
			return ErrAlreadyInWishlist
		}
		return err
	}
	return nil
}

// Remove deletes a product from the user's wishlist.
func (r *WishlistRepo) Remove(ctx context.Context, userID, productID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotInWishlist)
}
