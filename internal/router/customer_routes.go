package router

import (
	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/handler"
	"github.com/halchash/storefront/internal/middleware"
	"github.com/halchash/storefront/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /api.  All
// routes require a valid JWT and the customer role.  Customers can view
// their orders, review delivered products and manage a wishlist.
func RegisterCustomer(e *echo.Echo, o *handler.OrderHandler, r *handler.ReviewHandler, w *handler.WishlistHandler, jwtSecret string) {
	g := e.Group(
		"/api",
		middleware.JWTAuth(jwtSecret, middleware.CustomerCookie),
		middleware.RequireRole(model.RoleCustomer),
	)
	// POST /api/orders is public (guest checkout) and lives in RegisterPublic.
	g.GET("/orders", o.List)
	g.GET("/orders/:id", o.Get)

	g.POST("/reviews", r.Create)

	g.GET("/wishlist", w.List)
	g.POST("/wishlist", w.Add)
	g.DELETE("/wishlist", w.Remove)
	g.DELETE("/wishlist/:product_id", w.Remove)
}
