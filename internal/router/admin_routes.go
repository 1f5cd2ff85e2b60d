package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/handler"    // admin handlers
	"github.com/halchash/storefront/internal/middleware" // JWT + role middlewares
	"github.com/halchash/storefront/internal/model"
)

// adminGroup returns the /api/admin group guarded by the admin token.
func adminGroup(e *echo.Echo, jwtSecret string) *echo.Group {
	return e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret, middleware.AdminCookie),
		middleware.RequireRole(model.RoleAdmin),
	)
}

// RegisterAdmin registers admin login and catalog management.  Login is
// the only admin route reachable without a token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminAuthHandler, c *handler.AdminCatalogHandler, jwtSecret string, strict echo.MiddlewareFunc) {
	e.POST("/api/admin/login", a.Login, strict)
	e.POST("/api/admin/logout", a.Logout)

	g := adminGroup(e, jwtSecret)
	g.GET("/me", a.Me)
	g.PUT("/password", a.ChangePassword, strict)

	// ---- Categories ----
	g.GET("/categories", c.ListCategories)
	g.POST("/categories", c.CreateCategory)
	g.PUT("/categories/:id", c.UpdateCategory)
	g.DELETE("/categories/:id", c.DeleteCategory)

	// ---- Products ----
	g.GET("/products", c.ListProducts)
	g.POST("/products", c.CreateProduct)
	g.GET("/products/:id", c.GetProduct)
	g.PUT("/products/:id", c.UpdateProduct)
	g.DELETE("/products/:id", c.DeleteProduct)
}
