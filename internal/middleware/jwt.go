package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/utils"
)

// Cookie names carrying the access token for each principal type.
const (
	CustomerCookie = "auth_token"
	AdminCookie    = "admin_token"
)

// deny writes the error envelope used by every API response.
func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// bearerToken returns the token from the Authorization header, falling
// back to the named cookie.
func bearerToken(c echo.Context, cookie string) string {
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie == "" {
		return ""
	}
	if ck, err := c.Cookie(cookie); err == nil {
		return ck.Value
	}
	return ""
}

func setPrincipal(c echo.Context, claims *utils.Claims) {
	id, _ := claims.PrincipalID()
	c.Set(CtxUserID, id)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxEmail, claims.Email)
}

// JWTAuth validates the access token from the Bearer header or the given
// cookie and stores the principal's id, role and email in the context.
// Requests without a valid token get 401.
func JWTAuth(secret, cookie string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c, cookie)
			if raw == "" {
				return deny(c, http.StatusUnauthorized, "Authentication required")
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return deny(c, http.StatusUnauthorized, "Invalid or expired token")
			}
			setPrincipal(c, claims)
			return next(c)
		}
	}
}

// OptionalAuth is JWTAuth for routes open to guests: a valid token sets
// the principal, a missing or bad one is ignored.
func OptionalAuth(secret, cookie string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := bearerToken(c, cookie); raw != "" {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					setPrincipal(c, claims)
				}
			}
			return next(c)
		}
	}
}
