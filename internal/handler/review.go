package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/service"
)

// ReviewCreator runs the review workflow.
type ReviewCreator interface {
	CreateReview(ctx context.Context, in service.ReviewInput) (*service.ReviewResult, error)
}

// ReviewHandler accepts product reviews from customers.
type ReviewHandler struct {
	Reviews ReviewCreator
}

func NewReviewHandler(reviews ReviewCreator) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews}
}

// Create stores a review for a product of one of the caller's delivered
// orders.  The reviewer is always the authenticated customer.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var in service.ReviewInput
	if !bind(c, &in) {
		return nil
	}
	in.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Reviews.CreateReview(ctx, in)
	if err != nil {
		return failErr(c, err, "Failed to submit review")
	}
	return ok(c, http.StatusCreated, echo.Map{
		"message": "Review submitted successfully",
		"review":  res.Review,
		"product": res.Product,
	})
}
