package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/service"
	"github.com/halchash/storefront/internal/utils"
)

// CategoryAdmin is the category storage used by the back office.
type CategoryAdmin interface {
	ListAll(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id uint64) (model.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error)
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id uint64) error
}

// ProductAdmin is the product storage used by the back office.
type ProductAdmin interface {
	List(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, idOrSlug string, activeOnly bool) (model.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id uint64) error
}

// AdminCatalogHandler serves category and product management.
type AdminCatalogHandler struct {
	Categories CategoryAdmin
	Products   ProductAdmin
	Now        func() time.Time
}

func NewAdminCatalogHandler(cats CategoryAdmin, products ProductAdmin) *AdminCatalogHandler {
	return &AdminCatalogHandler{Categories: cats, Products: products, Now: time.Now}
}

type categoryReq struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsActive    *bool  `json:"is_active"`
}

type productReq struct {
	CategoryID    uint64              `json:"category_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	Discount      int                 `json:"discount"`
	Image         string              `json:"image"`
	Images        []string            `json:"images"`
	Features      []string            `json:"features"`
	InStock       *bool               `json:"in_stock"`
	StockQuantity int                 `json:"stock_quantity"`
	Badge         string              `json:"badge"`
	IsActive      *bool               `json:"is_active"`
	BuyingPrice   decimal.Decimal     `json:"buying_price"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// ListCategories lists every category, inactive ones included.
func (h *AdminCatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Categories.ListAll(ctx)
	if err != nil {
		return failErr(c, err, "Failed to load categories")
	}
	return ok(c, http.StatusOK, echo.Map{"categories": cats, "count": len(cats)})
}

// CreateCategory adds a category.  A colliding slug gets a timestamp suffix.
func (h *AdminCatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if !bind(c, &req) {
		return nil
	}
	cat := model.Category{
		Name:        strings.TrimSpace(req.Name),
		Icon:        strings.TrimSpace(req.Icon),
		Description: utils.Sanitize(req.Description),
		Color:       strings.TrimSpace(req.Color),
		IsActive:    boolOr(req.IsActive, true),
	}
	if cat.Name == "" {
		return fail(c, http.StatusBadRequest, "Category name is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	slug, err := service.ResolveSlug(ctx, h.Categories.SlugExists, cat.Name, 0, h.Now())
	if err != nil {
		return failErr(c, err, "Failed to create category")
	}
	cat.Slug = slug
	if err := h.Categories.Create(ctx, &cat); err != nil {
		return failErr(c, err, "Failed to create category")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Category created", "category": cat})
}

// UpdateCategory replaces a category.  A colliding slug gets the id as suffix.
func (h *AdminCatalogHandler) UpdateCategory(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid category id")
	}
	var req categoryReq
	if !bind(c, &req) {
		return nil
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "Category name is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to update category")
	}
	slug, err := service.ResolveSlug(ctx, h.Categories.SlugExists, name, id, h.Now())
	if err != nil {
		return failErr(c, err, "Failed to update category")
	}
	cat.Name, cat.Slug = name, slug
	cat.Icon = strings.TrimSpace(req.Icon)
	cat.Description = utils.Sanitize(req.Description)
	cat.Color = strings.TrimSpace(req.Color)
	cat.IsActive = boolOr(req.IsActive, cat.IsActive)
	if err := h.Categories.Update(ctx, cat); err != nil {
		return failErr(c, err, "Failed to update category")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Category updated", "category": cat})
}

// DeleteCategory removes a category that no product references.
func (h *AdminCatalogHandler) DeleteCategory(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid category id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Categories.Delete(ctx, id); err != nil {
		return failErr(c, err, "Failed to delete category")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Category deleted"})
}

// ListProducts lists every product with its buying price.
func (h *AdminCatalogHandler) ListProducts(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ps, err := h.Products.List(ctx, repository.ProductFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
	})
	if err != nil {
		return failErr(c, err, "Failed to load products")
	}
	return ok(c, http.StatusOK, echo.Map{"products": ps, "count": len(ps)})
}

// GetProduct returns a product by id, inactive ones included.
func (h *AdminCatalogHandler) GetProduct(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid product id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Products.Get(ctx, c.Param("id"), false)
	if err != nil {
		return failErr(c, err, "Failed to load product")
	}
	if p.ID != id {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	return ok(c, http.StatusOK, echo.Map{"product": p})
}

// productFrom validates req and copies it onto p.
func productFrom(req productReq, p *model.Product) string {
	p.Name = strings.TrimSpace(req.Name)
	switch {
	case p.Name == "":
		return "Product name is required"
	case req.CategoryID == 0:
		return "Category is required"
	case !req.Price.IsPositive():
		return "Price must be greater than zero"
	case req.BuyingPrice.IsNegative():
		return "Buying price cannot be negative"
	case req.DiscountPrice.Valid && req.DiscountPrice.Decimal.IsNegative():
		return "Discount price cannot be negative"
	}
	p.CategoryID = req.CategoryID
	p.Description = utils.Sanitize(req.Description)
	p.Price = req.Price
	p.DiscountPrice = req.DiscountPrice
	p.Discount = max(req.Discount, 0)
	p.Image = strings.TrimSpace(req.Image)
	p.Images = model.StringList(req.Images)
	p.Features = model.StringList(req.Features)
	p.InStock = boolOr(req.InStock, true)
	p.StockQuantity = max(req.StockQuantity, 0)
	p.Badge = strings.TrimSpace(req.Badge)
	p.IsActive = boolOr(req.IsActive, true)
	p.BuyingPrice = req.BuyingPrice
	return ""
}

// CreateProduct adds a product.
func (h *AdminCatalogHandler) CreateProduct(c echo.Context) error {
	var req productReq
	if !bind(c, &req) {
		return nil
	}
	var p model.Product
	if msg := productFrom(req, &p); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	slug, err := service.ResolveSlug(ctx, h.Products.SlugExists, p.Name, 0, h.Now())
	if err != nil {
		return failErr(c, err, "Failed to create product")
	}
	p.Slug = slug
	if err := h.Products.Create(ctx, &p); err != nil {
		return failErr(c, err, "Failed to create product")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Product created", "product": p})
}

// UpdateProduct replaces the editable fields of a product.
func (h *AdminCatalogHandler) UpdateProduct(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid product id")
	}
	var req productReq
	if !bind(c, &req) {
		return nil
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Products.Get(ctx, c.Param("id"), false)
	if err != nil {
		return failErr(c, err, "Failed to update product")
	}
	if msg := productFrom(req, &p); msg != "" {
		return fail(c, http.StatusBadRequest, msg)
	}
	slug, err := service.ResolveSlug(ctx, h.Products.SlugExists, p.Name, id, h.Now())
	if err != nil {
		return failErr(c, err, "Failed to update product")
	}
	p.Slug = slug
	if err := h.Products.Update(ctx, p); err != nil {
		return failErr(c, err, "Failed to update product")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Product updated", "product": p})
}

// DeleteProduct removes a product.  Past order items keep their snapshot.
func (h *AdminCatalogHandler) DeleteProduct(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid product id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Products.Delete(ctx, id); err != nil {
		return failErr(c, err, "Failed to delete product")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Product deleted"})
}
