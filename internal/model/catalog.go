package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category mirrors the `categories` table.  Color is a presentational CSS
// class string chosen by the admin.
type Category struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Icon         string    `json:"icon"`
	Description  string    `json:"description"`
	Color        string    `json:"color"`
	IsActive     bool      `json:"is_active"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product mirrors the `products` table joined with its category.  Rating
// and Reviews are derived from the reviews table and only written by the
// review workflow.  HeroOrder is nil unless the product is featured.
type Product struct {
	ID            uint64              `json:"id"`
	CategoryID    uint64              `json:"category_id"`
	CategoryName  string              `json:"category_name,omitempty"`
	CategorySlug  string              `json:"category_slug,omitempty"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	Discount      int                 `json:"discount"`
	Image         string              `json:"image"`
	Images        StringList          `json:"images"`
	Features      StringList          `json:"features"`
	Rating        decimal.Decimal     `json:"rating"`
	Reviews       int                 `json:"reviews"`
	InStock       bool                `json:"in_stock"`
	StockQuantity int                 `json:"stock_quantity"`
	Badge         string              `json:"badge"`
	IsActive      bool                `json:"is_active"`
	BuyingPrice   decimal.Decimal     `json:"buying_price,omitzero"`
	HeroOrder     *int                `json:"hero_order"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// StringList is an ordered list of strings persisted in a JSON column.
// NULL and empty values read back as an empty list.
type StringList []string

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("string list: unsupported source %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON renders a nil list as [].
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
