package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
)

// ProductRepo provides catalog queries and admin mutations for products.
// Rating, review count and hero_order are only written through the
// dedicated ...Tx methods used by the review and hero workflows.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// ProductFilter narrows List.  Category matches a slug or a numeric id.
type ProductFilter struct {
	Category   string
	Search     string
	Limit      int
	ActiveOnly bool
}

const productSelect = `SELECT p.id, p.category_id, c.name, c.slug, p.name, p.slug, p.description,
	p.price, p.discount_price, p.discount, p.image, p.images, p.features, p.rating, p.reviews,
	p.in_stock, p.stock_quantity, p.badge, p.is_active, p.buying_price, p.hero_order,
	p.created_at, p.updated_at
	FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	var catName, catSlug, desc, image, badge sql.NullString
	var hero sql.NullInt64
	err := row.Scan(&p.ID, &p.CategoryID, &catName, &catSlug, &p.Name, &p.Slug, &desc,
		&p.Price, &p.DiscountPrice, &p.Discount, &image, &p.Images, &p.Features, &p.Rating, &p.Reviews,
		&p.InStock, &p.StockQuantity, &badge, &p.IsActive, &p.BuyingPrice, &hero,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.CategoryName, p.CategorySlug = catName.String, catSlug.String
	p.Description, p.Image, p.Badge = desc.String, image.String, badge.String
	if hero.Valid {
		h := int(hero.Int64)
		p.HeroOrder = &h
	}
	return p, nil
}

func (r *ProductRepo) query(ctx context.Context, q string, args ...any) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// List returns products matching f, newest first.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	var where []string
	var args []any
	if f.ActiveOnly {
		where = append(where, "p.is_active = 1")
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		if id, err := strconv.ParseUint(cat, 10, 64); err == nil {
			where = append(where, "p.category_id = ?")
			args = append(args, id)
		} else {
			where = append(where, "c.slug = ?")
			args = append(args, cat)
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(p.name LIKE ? OR p.description LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	q := productSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY p.created_at DESC, p.id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return r.query(ctx, q, args...)
}

// Get returns a product by numeric id or slug.
func (r *ProductRepo) Get(ctx context.Context, idOrSlug string, activeOnly bool) (model.Product, error) {
	q := productSelect + " WHERE "
	var arg any
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		q += "p.id = ?"
		arg = id
	} else {
		q += "p.slug = ?"
		arg = idOrSlug
	}
	if activeOnly {
		q += " AND p.is_active = 1"
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrProductNotFound
	}
	return p, err
}

// ListHero returns active featured products ordered by hero_order.
func (r *ProductRepo) ListHero(ctx context.Context, limit int) ([]model.Product, error) {
	return r.query(ctx, productSelect+
		" WHERE p.is_active = 1 AND p.hero_order IS NOT NULL ORDER BY p.hero_order ASC LIMIT ?", limit)
}

// SlugExists reports whether slug is used by a product other than excludeID.
func (r *ProductRepo) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM products WHERE slug = ? AND id <> ? LIMIT 1`, slug, excludeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create inserts p and sets its ID.  Rating, reviews and hero_order start
// at their column defaults.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (category_id, name, slug, description, price, discount_price, discount, image,
		images, features, in_stock, stock_quantity, badge, is_active, buying_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.DiscountPrice, p.Discount, p.Image,
		p.Images, p.Features, p.InStock, p.StockQuantity, p.Badge, p.IsActive, p.BuyingPrice)
	if err != nil {
		return classifyDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update overwrites the admin-editable columns of p.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET category_id = ?, name = ?, slug = ?, description = ?, price = ?, discount_price = ?,
		discount = ?, image = ?, images = ?, features = ?, in_stock = ?, stock_quantity = ?, badge = ?,
		is_active = ?, buying_price = ? WHERE id = ?`,
		p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.DiscountPrice, p.Discount, p.Image,
		p.Images, p.Features, p.InStock, p.StockQuantity, p.Badge, p.IsActive, p.BuyingPrice, p.ID)
	if err != nil {
		return classifyDuplicate(err)
	}
	return requireRow(res, ErrProductNotFound)
}

// Delete removes a product.  Order items keep their snapshot with a NULL
// product reference.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrProductNotFound)
}

// Exists reports whether an active product with id exists.
func (r *ProductRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ? AND is_active = 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// BuyingPriceTx returns the current cost basis of a product.  found is
// false when the product no longer exists.
func (r *ProductRepo) BuyingPriceTx(ctx context.Context, tx *sql.Tx, id uint64) (decimal.Decimal, bool, error) {
	var price decimal.NullDecimal
	err := tx.QueryRowContext(ctx, `SELECT buying_price FROM products WHERE id = ?`, id).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	if !price.Valid {
		return decimal.Zero, true, nil
	}
	return price.Decimal, true, nil
}

// RatingTotalsTx returns the sum and count of every review of a product.
func (r *ProductRepo) RatingTotalsTx(ctx context.Context, tx *sql.Tx, id uint64) (int64, int64, error) {
	var sum, count int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(rating), 0), COUNT(*) FROM reviews WHERE product_id = ?`, id).Scan(&sum, &count)
	return sum, count, err
}

// UpdateRatingTx stores the recomputed rating and review count.
func (r *ProductRepo) UpdateRatingTx(ctx context.Context, tx *sql.Tx, id uint64, rating decimal.Decimal, reviews int) error {
	_, err := tx.ExecContext(ctx, `UPDATE products SET rating = ?, reviews = ? WHERE id = ?`, rating, reviews, id)
	return err
}

// ClearHeroOrderTx removes every product from the hero carousel.
func (r *ProductRepo) ClearHeroOrderTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `UPDATE products SET hero_order = NULL WHERE hero_order IS NOT NULL`)
	return err
}

// SetHeroOrderTx places a product at position in the hero carousel.
func (r *ProductRepo) SetHeroOrderTx(ctx context.Context, tx *sql.Tx, id uint64, position int) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE products SET hero_order = ? WHERE id = ?`, position, id)
	if err != nil {
		return false, err
	}
	if err := requireRow(res, ErrProductNotFound); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
