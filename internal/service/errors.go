// Package service implements the storefront's transactional workflows:
// checkout, review submission and hero curation.  Each workflow talks to
// storage through a small interface so that its rules can be exercised
// without a database.
package service

import (
	"errors"
	"fmt"
)

// ValidationError reports input that was rejected before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	// ErrPhoneBlocked is returned by checkout when the customer's phone
	// is on the block list.
	ErrPhoneBlocked = errors.New("phone number is blocked")

	// ErrOrderNotOwned covers both a missing order and one that belongs
	// to another customer, so ownership is not leaked.
	ErrOrderNotOwned = errors.New("order not found or does not belong to you")

	// ErrOrderNotDelivered is returned when reviewing an undelivered order.
	ErrOrderNotDelivered = errors.New("you can only review products from delivered orders")

	// ErrProductNotInOrder is returned when the product is not a line item.
	ErrProductNotInOrder = errors.New("product was not in this order")

	// ErrAlreadyReviewed is returned for a second review of the same
	// (user, product, order).
	ErrAlreadyReviewed = errors.New("you have already reviewed this product for this order")

	// ErrHeroProductNotFound is returned when a hero list names an unknown product.
	ErrHeroProductNotFound = errors.New("hero product not found")
)
