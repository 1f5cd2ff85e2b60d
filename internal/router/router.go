package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/halchash/storefront/internal/handler"    // handlers that implement the endpoints
	"github.com/halchash/storefront/internal/metrics"    // Prometheus exposition
	"github.com/halchash/storefront/internal/middleware" // JWT and role middlewares
	"github.com/halchash/storefront/internal/model"
)

// RegisterRoutes registers the operational endpoints: the health check
// used by load balancers and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers customer authentication routes.  Signup and login
// sit behind the strict rate limiter; profile routes require a customer
// token from the Authorization header or the auth_token cookie.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, strict echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/signup", a.Signup, strict)
	g.POST("/login", a.Login, strict)
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/api",
		middleware.JWTAuth(jwtSecret, middleware.CustomerCookie),
		middleware.RequireRole(model.RoleCustomer),
	)
	auth.GET("/auth/me", a.Me)
	auth.PUT("/profile", a.UpdateProfile)
	auth.PUT("/profile/password", a.ChangePassword, strict)
}

// RegisterPublic registers the unauthenticated catalog and checkout.
// Checkout accepts guests; a customer token, when present, attaches the
// order to that account.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, orders *handler.OrderHandler, jwtSecret string, strict echo.MiddlewareFunc) {
	e.GET("/api/categories", cat.ListCategories)
	e.GET("/api/products", cat.ListProducts)
	e.GET("/api/products/hero", cat.ListHero)
	e.GET("/api/products/:id", cat.GetProduct)
	e.GET("/api/reviews", cat.ListReviews)

	optional := middleware.OptionalAuth(jwtSecret, middleware.CustomerCookie)
	e.POST("/api/orders", orders.Create, optional, strict)
	e.POST("/api/orders/create", orders.Create, optional, strict)
}
