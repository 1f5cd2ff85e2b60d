package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/halchash/storefront/internal/model"
)

// CategoryRepo provides CRUD operations for product categories.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo returns a new CategoryRepo bound to the given database.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categorySelect = `SELECT c.id, c.name, c.slug, c.icon, c.description, c.color, c.is_active, c.created_at,
	(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
	FROM categories c`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	var icon, desc, color sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &icon, &desc, &color, &c.IsActive, &c.CreatedAt, &c.ProductCount)
	c.Icon, c.Description, c.Color = icon.String, desc.String, color.String
	return c, err
}

func (r *CategoryRepo) list(ctx context.Context, query string) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListActive returns active categories ordered by name.
func (r *CategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, categorySelect+` WHERE c.is_active = 1 ORDER BY c.name`)
}

// ListAll returns every category, newest first, for the back office.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, categorySelect+` ORDER BY c.created_at DESC, c.id DESC`)
}

// GetByID returns one category.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+` WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCategoryNotFound
	}
	return c, err
}

// SlugExists reports whether slug is used by a category other than excludeID.
func (r *CategoryRepo) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM categories WHERE slug = ? AND id <> ? LIMIT 1`, slug, excludeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create inserts c and sets its ID.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug, icon, description, color, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Slug, c.Icon, c.Description, c.Color, c.IsActive)
	if err != nil {
		return classifyDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update overwrites every editable column of c.
func (r *CategoryRepo) Update(ctx context.Context, c model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, icon = ?, description = ?, color = ?, is_active = ? WHERE id = ?`,
		c.Name, c.Slug, c.Icon, c.Description, c.Color, c.IsActive, c.ID)
	if err != nil {
		return classifyDuplicate(err)
	}
	return requireRow(res, ErrCategoryNotFound)
}

// Delete removes a category.  It returns ErrConflict while any product
// still references the category.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM products WHERE category_id = ?`, id).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, ErrCategoryNotFound)
	})
}
