// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// Not-found errors.  Handlers translate these into HTTP 404.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrBlockedUserNotFound = errors.New("blocked user not found")
	ErrNotInWishlist       = errors.New("product not in wishlist")
)

// ErrConflict is returned when a delete or update cannot be performed
// because of dependent records, such as deleting a category that still
// has products. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Unique-key violations, classified by the key that was hit.
var (
	ErrDuplicate            = errors.New("duplicate entry")
	ErrEmailTaken           = errors.New("email already registered")
	ErrPhoneTaken           = errors.New("phone number already registered")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrSlugTaken            = errors.New("slug already taken")
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
	ErrAlreadyBlocked       = errors.New("phone number already blocked")
	ErrAlreadyInWishlist    = errors.New("product already in wishlist")
)

// ErrBlockListUnavailable is returned by block-list mutations when the
// blocked_users table has not been migrated.
var ErrBlockListUnavailable = errors.New("block list is not available; run migrations")
