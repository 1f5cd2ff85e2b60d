// Package seed loads a starter catalog from YAML into the database.  It
// backs the `seed` CLI command and is safe to run repeatedly: categories
// and products whose slug already exists are left untouched.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/utils"
)

// Catalog is the document read from a seed file.  Prices are strings so
// that values such as "450.00" keep their exact decimal form.
type Catalog struct {
	Categories []CategorySeed `yaml:"categories"`
}

// CategorySeed describes a category and the products filed under it.
type CategorySeed struct {
	Name        string        `yaml:"name"`
	Slug        string        `yaml:"slug"`
	Icon        string        `yaml:"icon"`
	Description string        `yaml:"description"`
	Color       string        `yaml:"color"`
	Products    []ProductSeed `yaml:"products"`
}

// ProductSeed describes one product.
type ProductSeed struct {
	Name          string   `yaml:"name"`
	Slug          string   `yaml:"slug"`
	Description   string   `yaml:"description"`
	Price         string   `yaml:"price"`
	DiscountPrice string   `yaml:"discount_price"`
	Discount      int      `yaml:"discount"`
	BuyingPrice   string   `yaml:"buying_price"`
	Image         string   `yaml:"image"`
	Images        []string `yaml:"images"`
	Features      []string `yaml:"features"`
	StockQuantity int      `yaml:"stock_quantity"`
	Badge         string   `yaml:"badge"`
	OutOfStock    bool     `yaml:"out_of_stock"`
}

// Store is the storage the seeder writes through.
type Store interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	ProductSlugExists(ctx context.Context, slug string) (bool, error)
	CreateProduct(ctx context.Context, p *model.Product) error
}

// Result counts what Apply wrote and skipped.
type Result struct {
	CategoriesCreated int
	ProductsCreated   int
	Skipped           int
}

// LoadCatalog reads and parses the seed file at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML catalog and checks that every entry has a
// name and a positive price.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing seed YAML: %w", err)
	}
	for i, c := range cat.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d: name is required", i+1)
		}
		for j, p := range c.Products {
			if strings.TrimSpace(p.Name) == "" {
				return nil, fmt.Errorf("category %q product %d: name is required", c.Name, j+1)
			}
			if _, err := p.product(0); err != nil {
				return nil, fmt.Errorf("product %q: %w", p.Name, err)
			}
		}
	}
	return &cat, nil
}

func slugFor(slug, name string) string {
	if s := utils.Slugify(slug); s != "" {
		return s
	}
	return utils.Slugify(name)
}

func parseMoney(field, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return d, fmt.Errorf("%s %q is not a number", field, raw)
	}
	if d.IsNegative() {
		return d, fmt.Errorf("%s cannot be negative", field)
	}
	return d, nil
}

// product converts the seed entry into a model.Product of categoryID.
func (p ProductSeed) product(categoryID uint64) (model.Product, error) {
	price, err := parseMoney("price", p.Price)
	if err != nil {
		return model.Product{}, err
	}
	if !price.IsPositive() {
		return model.Product{}, fmt.Errorf("price must be greater than zero")
	}
	buying, err := parseMoney("buying_price", p.BuyingPrice)
	if err != nil {
		return model.Product{}, err
	}
	out := model.Product{
		CategoryID:    categoryID,
		Name:          strings.TrimSpace(p.Name),
		Slug:          slugFor(p.Slug, p.Name),
		Description:   strings.TrimSpace(p.Description),
		Price:         price,
		Discount:      p.Discount,
		Image:         p.Image,
		Images:        model.StringList(p.Images),
		Features:      model.StringList(p.Features),
		InStock:       !p.OutOfStock,
		StockQuantity: p.StockQuantity,
		Badge:         p.Badge,
		IsActive:      true,
		BuyingPrice:   buying,
	}
	if strings.TrimSpace(p.DiscountPrice) != "" {
		dp, err := parseMoney("discount_price", p.DiscountPrice)
		if err != nil {
			return model.Product{}, err
		}
		out.DiscountPrice = decimal.NewNullDecimal(dp)
	}
	return out, nil
}

// Apply writes the catalog through store.  Existing categories are
// matched by slug and reused for their products.
func Apply(ctx context.Context, store Store, cat *Catalog) (Result, error) {
	var res Result
	existing, err := store.ListCategories(ctx)
	if err != nil {
		return res, err
	}
	ids := make(map[string]uint64, len(existing))
	for _, c := range existing {
		ids[c.Slug] = c.ID
	}

	for _, cs := range cat.Categories {
		slug := slugFor(cs.Slug, cs.Name)
		id, found := ids[slug]
		if found {
			res.Skipped++
		} else {
			c := model.Category{
				Name:        strings.TrimSpace(cs.Name),
				Slug:        slug,
				Icon:        cs.Icon,
				Description: strings.TrimSpace(cs.Description),
				Color:       cs.Color,
				IsActive:    true,
			}
			if err := store.CreateCategory(ctx, &c); err != nil {
				return res, fmt.Errorf("category %q: %w", cs.Name, err)
			}
			id = c.ID
			ids[slug] = id
			res.CategoriesCreated++
		}

		for _, ps := range cs.Products {
			p, err := ps.product(id)
			if err != nil {
				return res, fmt.Errorf("product %q: %w", ps.Name, err)
			}
			taken, err := store.ProductSlugExists(ctx, p.Slug)
			if err != nil {
				return res, err
			}
			if taken {
				res.Skipped++
				continue
			}
			if err := store.CreateProduct(ctx, &p); err != nil {
				return res, fmt.Errorf("product %q: %w", ps.Name, err)
			}
			res.ProductsCreated++
		}
	}
	return res, nil
}
