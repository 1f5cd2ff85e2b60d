package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
)

// WishlistStore persists wishlist entries.
type WishlistStore interface {
	List(ctx context.Context, userID uint64) ([]model.WishlistEntry, error)
	Add(ctx context.Context, userID, productID uint64) error
	Remove(ctx context.Context, userID, productID uint64) error
}

// WishlistHandler serves the customer's wishlist.
type WishlistHandler struct {
	Wishlist WishlistStore
}

func NewWishlistHandler(w WishlistStore) *WishlistHandler {
	return &WishlistHandler{Wishlist: w}
}

type wishlistReq struct {
	ProductID uint64 `json:"product_id"`
}

// List returns the wishlist, most recently added first.
func (h *WishlistHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Wishlist.List(ctx, uid)
	if err != nil {
		return failErr(c, err, "Failed to load wishlist")
	}
	for i := range items {
		items[i].BuyingPrice = decimal.Zero
	}
	return ok(c, http.StatusOK, echo.Map{"wishlist": items, "count": len(items)})
}

// Add puts a product on the wishlist.
func (h *WishlistHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var req wishlistReq
	if !bind(c, &req) {
		return nil
	}
	if req.ProductID == 0 {
		return fail(c, http.StatusBadRequest, "product_id is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Wishlist.Add(ctx, uid, req.ProductID); err != nil {
		return failErr(c, err, "Failed to add to wishlist")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Added to wishlist"})
}

// Remove takes a product off the wishlist.  The product id comes from the
// path or from ?product_id.
func (h *WishlistHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	pid, valid := parseID(c, "product_id")
	if !valid {
		n, err := strconv.ParseUint(c.QueryParam("product_id"), 10, 64)
		if err != nil || n == 0 {
			return fail(c, http.StatusBadRequest, "product_id is required")
		}
		pid = n
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Wishlist.Remove(ctx, uid, pid); err != nil {
		return failErr(c, err, "Failed to remove from wishlist")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Removed from wishlist"})
}
