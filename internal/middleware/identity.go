package middleware

// identity.go holds the request context keys written by the auth
// middleware and the accessors shared by handlers and the rate limiter.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth and OptionalAuth.
const (
	CtxUserID = "user_id" // uint64 principal id
	CtxRole   = "role"    // "customer" or "admin"
	CtxEmail  = "email"
)

// PrincipalID returns the authenticated principal id, if any.
func PrincipalID(c echo.Context) (uint64, bool) {
	switch v := c.Get(CtxUserID).(type) {
	case uint64:
		return v, v != 0
	case int64:
		return uint64(v), v > 0
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id != 0
	}
	return 0, false
}

// Role returns the authenticated principal's role or "".
func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

// userID is the rate limit identity: "<role>:<id>" or "guest".
func userID(c echo.Context) string {
	id, ok := PrincipalID(c)
	if !ok {
		return "guest"
	}
	return Role(c) + ":" + strconv.FormatUint(id, 10)
}
