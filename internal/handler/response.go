// Package handler holds the echo handlers of the storefront API.  Every
// response uses the envelope {"success": true, ...} or
// {"success": false, "error": "..."}.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/middleware"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/service"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// ok writes a success envelope merged with payload.
func ok(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// fail writes an error envelope.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// errorStatus maps domain errors to a status and a client-safe message.
// Unknown errors become 500 with fallback.
func errorStatus(err error, fallback string) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Msg
	case errors.Is(err, service.ErrPhoneBlocked):
		return http.StatusForbidden, "This phone number has been blocked from placing orders. Please contact support."
	case errors.Is(err, repository.ErrPhoneTaken):
		return http.StatusConflict, "This phone number is already registered with another account"
	case errors.Is(err, repository.ErrEmailTaken):
		return http.StatusConflict, "This email is already registered"
	case errors.Is(err, repository.ErrUsernameTaken):
		return http.StatusConflict, "This username is already taken"
	case errors.Is(err, repository.ErrSlugTaken):
		return http.StatusConflict, "An item with this slug already exists"
	case errors.Is(err, repository.ErrDuplicateOrderNumber):
		return http.StatusConflict, "Order number collision, please submit the order again"
	case errors.Is(err, repository.ErrAlreadyBlocked):
		return http.StatusConflict, "This phone number is already blocked"
	case errors.Is(err, repository.ErrAlreadyInWishlist):
		return http.StatusConflict, "Product already in wishlist"
	case errors.Is(err, service.ErrAlreadyReviewed):
		return http.StatusConflict, "You have already reviewed this product for this order"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "Cannot delete category with existing products"
	case errors.Is(err, service.ErrOrderNotOwned):
		return http.StatusNotFound, "Order not found or does not belong to you"
	case errors.Is(err, service.ErrOrderNotDelivered):
		return http.StatusBadRequest, "You can only review products from delivered orders"
	case errors.Is(err, service.ErrProductNotInOrder):
		return http.StatusBadRequest, "Product not found in this order"
	case errors.Is(err, service.ErrHeroProductNotFound):
		return http.StatusNotFound, "One or more hero products do not exist"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, repository.ErrAdminNotFound):
		return http.StatusNotFound, "Admin not found"
	case errors.Is(err, repository.ErrCategoryNotFound):
		return http.StatusNotFound, "Category not found"
	case errors.Is(err, repository.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, repository.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, repository.ErrBlockedUserNotFound):
		return http.StatusNotFound, "Blocked user not found"
	case errors.Is(err, repository.ErrNotInWishlist):
		return http.StatusNotFound, "Product not in wishlist"
	case errors.Is(err, repository.ErrBlockListUnavailable):
		return http.StatusInternalServerError, "Blocked users table not found. Please run migrations."
	}
	return http.StatusInternalServerError, fallback
}

// failErr writes the envelope for err, logging anything that maps to 500.
func failErr(c echo.Context, err error, fallback string) error {
	status, msg := errorStatus(err, fallback)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), fallback, "path", c.Path(), "error", err)
	}
	return fail(c, status, msg)
}

// HTTPErrorHandler renders router and framework errors in the envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		default:
			msg = http.StatusText(code)
		}
	} else {
		slog.ErrorContext(c.Request().Context(), "unhandled error", "path", c.Path(), "error", err)
	}
	if code == http.StatusMethodNotAllowed {
		msg = "Method not allowed"
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = fail(c, code, msg)
}

// getUserID returns the authenticated principal id.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.PrincipalID(c)
	if !ok {
		return 0, errors.New("invalid user_id in context")
	}
	return id, nil
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// bind decodes the request body, answering 400 itself on failure.
func bind(c echo.Context, dst any) bool {
	if err := c.Bind(dst); err != nil {
		_ = fail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
