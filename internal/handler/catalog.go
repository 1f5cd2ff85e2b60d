package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
)

// CategoryReader lists storefront categories.
type CategoryReader interface {
	ListActive(ctx context.Context) ([]model.Category, error)
}

// ProductReader serves catalog queries.
type ProductReader interface {
	List(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, idOrSlug string, activeOnly bool) (model.Product, error)
	ListHero(ctx context.Context, limit int) ([]model.Product, error)
}

// ReviewReader lists the reviews of a product.
type ReviewReader interface {
	ListByProduct(ctx context.Context, productID uint64) ([]model.Review, error)
}

// CatalogHandler serves the public catalog.
type CatalogHandler struct {
	Categories CategoryReader
	Products   ProductReader
	Reviews    ReviewReader
	HeroMax    int
}

func NewCatalogHandler(cats CategoryReader, products ProductReader, reviews ReviewReader, heroMax int) *CatalogHandler {
	return &CatalogHandler{Categories: cats, Products: products, Reviews: reviews, HeroMax: heroMax}
}

// maxProductLimit caps ?limit on public listings.
const maxProductLimit = 100

// public strips the cost basis from products shown to customers.
func public(ps []model.Product) []model.Product {
	for i := range ps {
		ps[i].BuyingPrice = decimal.Zero
	}
	return ps
}

// ListCategories lists active categories ordered by name.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Categories.ListActive(ctx)
	if err != nil {
		return failErr(c, err, "Failed to load categories")
	}
	return ok(c, http.StatusOK, echo.Map{"categories": cats, "count": len(cats)})
}

// ListProducts lists active products filtered by ?category (slug or id),
// ?search and ?limit.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	f := repository.ProductFilter{
		Category:   strings.TrimSpace(c.QueryParam("category")),
		Search:     strings.TrimSpace(c.QueryParam("search")),
		ActiveOnly: true,
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fail(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		f.Limit = min(n, maxProductLimit)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	ps, err := h.Products.List(ctx, f)
	if err != nil {
		return failErr(c, err, "Failed to load products")
	}
	return ok(c, http.StatusOK, echo.Map{"products": public(ps), "count": len(ps)})
}

// GetProduct returns one active product by id or slug.
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	key := strings.TrimSpace(c.Param("id"))
	if key == "" {
		return fail(c, http.StatusBadRequest, "Product id is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Products.Get(ctx, key, true)
	if err != nil {
		return failErr(c, err, "Failed to load product")
	}
	p.BuyingPrice = decimal.Zero
	return ok(c, http.StatusOK, echo.Map{"product": p})
}

// ListHero lists the homepage carousel in display order.
func (h *CatalogHandler) ListHero(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ps, err := h.Products.ListHero(ctx, h.HeroMax)
	if err != nil {
		return failErr(c, err, "Failed to load hero products")
	}
	return ok(c, http.StatusOK, echo.Map{"products": public(ps), "count": len(ps)})
}

// ListReviews lists reviews for ?product_id, newest first.
func (h *CatalogHandler) ListReviews(c echo.Context) error {
	pid, err := strconv.ParseUint(c.QueryParam("product_id"), 10, 64)
	if err != nil || pid == 0 {
		return fail(c, http.StatusBadRequest, "product_id is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rs, err := h.Reviews.ListByProduct(ctx, pid)
	if err != nil {
		return failErr(c, err, "Failed to load reviews")
	}
	return ok(c, http.StatusOK, echo.Map{"reviews": rs, "count": len(rs)})
}
