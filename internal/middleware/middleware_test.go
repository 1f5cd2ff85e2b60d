package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halchash/storefront/internal/config"
	"github.com/halchash/storefront/internal/utils"
)

const secret = "test-secret"

func token(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, role, "who@x.com", time.Hour)
	require.NoError(t, err)
	return tok.Token
}

// whoami echoes the principal seen by the handler.
func whoami(c echo.Context) error {
	id, ok := PrincipalID(c)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "ok": ok, "role": Role(c), "key": userID(c)})
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthBearer(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret, CustomerCookie))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 9, "customer"))
	rec := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":9,"ok":true,"role":"customer","key":"customer:9"}`, rec.Body.String())
}

func TestJWTAuthCookie(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret, AdminCookie))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookie, Value: token(t, 2, "admin")})
	rec := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)
}

func TestJWTAuthRejects(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret, CustomerCookie))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Authentication required"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec = serve(e, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")

	// An admin cookie is not read by customer routes.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookie, Value: token(t, 2, "admin")})
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
}

func TestOptionalAuth(t *testing.T) {
	e := echo.New()
	e.GET("/checkout", whoami, OptionalAuth(secret, CustomerCookie))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"key":"guest"`)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)

	req = httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.AddCookie(&http.Cookie{Name: CustomerCookie, Value: token(t, 5, "customer")})
	rec = serve(e, req)
	assert.Contains(t, rec.Body.String(), `"id":5`)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/admin", whoami, JWTAuth(secret, AdminCookie), RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 3, "customer"))
	rec := serve(e, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Access denied"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, 3, "admin"))
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", whoami, NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set("X-Real-IP", "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/orders")

	cfg := config.RateLimitConfig{Prefix: "halchash:rl"}
	assert.Equal(t, "halchash:rl:ip:10.0.0.7:user:guest:route:POST /api/orders", buildRateKey(cfg, c))

	c.Set(CtxUserID, uint64(12))
	c.Set(CtxRole, "customer")
	cfg.KeyStrategy = "user"
	assert.Equal(t, "halchash:rl:user:customer:12", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip"
	assert.Equal(t, "halchash:rl:ip:10.0.0.7", buildRateKey(cfg, c))
}

func TestPrincipalIDTypes(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := PrincipalID(c)
	assert.False(t, ok)

	c.Set(CtxUserID, "44")
	id, ok := PrincipalID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(44), id)

	c.Set(CtxUserID, uint64(0))
	_, ok = PrincipalID(c)
	assert.False(t, ok)
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusTeapot, "hi") })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
}
