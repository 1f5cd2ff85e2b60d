package router

// This file registers the admin routes that operate on orders and
// customers: order management, the phone block list, hero curation,
// the data reset and profit analytics.

import (
	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/handler"
)

// RegisterAdminOrders registers order and customer management under
// /api/admin.  All routes require an admin token.
func RegisterAdminOrders(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := adminGroup(e, jwtSecret)

	g.GET("/orders", h.ListOrders)
	g.GET("/orders/:id", h.GetOrder)
	g.PUT("/orders/:id/status", h.UpdateOrderStatus)

	g.GET("/users", h.ListUsers)

	// DELETE accepts ?id=, ?phone= or a JSON body with either.
	g.GET("/blocked-users", h.ListBlocked)
	g.POST("/blocked-users", h.Block)
	g.DELETE("/blocked-users", h.Unblock)

	g.GET("/hero", h.GetHero)
	g.PUT("/hero", h.ReplaceHero)

	g.POST("/data/reset", h.ResetData)
	g.GET("/analytics", h.GetAnalytics)
}
