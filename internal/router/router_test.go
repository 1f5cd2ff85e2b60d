package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halchash/storefront/internal/config"
	"github.com/halchash/storefront/internal/handler"
	"github.com/halchash/storefront/internal/middleware"
	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/utils"
)

const secret = "router-secret"

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	cfg := config.Config{JWTSecret: secret, TokenTTL: time.Hour}
	orders := handler.NewOrderHandler(nil, nil, nil)

	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg, nil), secret, passthrough)
	RegisterPublic(e, handler.NewCatalogHandler(nil, nil, nil, 5), orders, secret, passthrough)
	RegisterCustomer(e, orders, handler.NewReviewHandler(nil), handler.NewWishlistHandler(nil), secret)
	RegisterAdmin(e, handler.NewAdminAuthHandler(cfg, nil), handler.NewAdminCatalogHandler(nil, nil), secret, passthrough)
	RegisterAdminOrders(e, &handler.AdminHandler{}, secret)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"POST /api/auth/signup",
		"GET /api/auth/me",
		"PUT /api/profile",
		"GET /api/categories",
		"GET /api/products/hero",
		"GET /api/products/:id",
		"POST /api/orders",
		"POST /api/orders/create",
		"GET /api/orders",
		"POST /api/reviews",
		"DELETE /api/wishlist/:product_id",
		"POST /api/admin/login",
		"PUT /api/admin/categories/:id",
		"DELETE /api/admin/products/:id",
		"PUT /api/admin/orders/:id/status",
		"DELETE /api/admin/blocked-users",
		"PUT /api/admin/hero",
		"POST /api/admin/data/reset",
		"GET /api/admin/analytics",
	} {
		assert.True(t, have[want], want)
	}
}

func request(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAudienceGuards(t *testing.T) {
	e := newServer()
	customer, err := utils.NewAccessToken(secret, 3, model.RoleCustomer, "c@x.com", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(e, http.MethodGet, "/api/orders", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(e, http.MethodGet, "/api/admin/orders", "").Code)
	assert.Equal(t, http.StatusForbidden, request(e, http.MethodGet, "/api/admin/orders", customer.Token).Code)
}

func TestAdminCookieIsSeparate(t *testing.T) {
	e := newServer()
	admin, err := utils.NewAccessToken(secret, 1, model.RoleAdmin, "a@x.com", time.Hour)
	require.NoError(t, err)

	// An admin token in the customer cookie does not open admin routes.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CustomerCookie, Value: admin.Token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
