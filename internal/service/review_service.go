package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/metrics"
	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/utils"
)

// ReviewTx is the storage seen by one review submission.
type ReviewTx interface {
	// OrderStatusForUser returns the status of orderID if it belongs to userID.
	OrderStatusForUser(ctx context.Context, orderID, userID uint64) (string, bool, error)
	OrderHasProduct(ctx context.Context, orderID, productID uint64) (bool, error)
	ReviewExists(ctx context.Context, userID, productID, orderID uint64) (bool, error)
	CreateReview(ctx context.Context, rv *model.Review) error
	ProductRatingTotals(ctx context.Context, productID uint64) (sum, count int64, err error)
	UpdateProductRating(ctx context.Context, productID uint64, rating decimal.Decimal, reviews int) error
}

// ReviewStore opens review transactions.
type ReviewStore interface {
	InReviewTx(ctx context.Context, fn func(ReviewTx) error) error
}

// ReviewInput is a review submission.  UserID comes from the caller's token.
type ReviewInput struct {
	UserID    uint64
	ProductID uint64 `json:"product_id"`
	OrderID   uint64 `json:"order_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// ReviewResult is the stored review and the product's new rating.
type ReviewResult struct {
	Review  model.Review
	Product model.ProductRating
}

// ReviewService accepts reviews from customers who received the product.
type ReviewService struct {
	store ReviewStore
	log   *slog.Logger
}

// NewReviewService returns a ReviewService backed by store.
func NewReviewService(store ReviewStore, log *slog.Logger) *ReviewService {
	if log == nil {
		log = slog.Default()
	}
	return &ReviewService{store: store, log: log}
}

// CreateReview stores a review after checking that the order belongs to
// the user, was delivered, contains the product and was not reviewed for
// that product yet.  The product's rating and review count are then
// recomputed from every stored review in the same transaction.
func (s *ReviewService) CreateReview(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	if in.UserID == 0 || in.ProductID == 0 || in.OrderID == 0 {
		return nil, invalid("product_id and order_id are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("Rating must be between 1 and 5")
	}
	comment := utils.Sanitize(in.Comment)

	var res ReviewResult
	err := s.store.InReviewTx(ctx, func(tx ReviewTx) error {
		status, found, err := tx.OrderStatusForUser(ctx, in.OrderID, in.UserID)
		if err != nil {
			return err
		}
		if !found {
			return ErrOrderNotOwned
		}
		if status != model.OrderDelivered {
			return ErrOrderNotDelivered
		}

		ok, err := tx.OrderHasProduct(ctx, in.OrderID, in.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProductNotInOrder
		}

		exists, err := tx.ReviewExists(ctx, in.UserID, in.ProductID, in.OrderID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyReviewed
		}

		res.Review = model.Review{
			UserID:    in.UserID,
			ProductID: in.ProductID,
			OrderID:   in.OrderID,
			Rating:    in.Rating,
			Comment:   comment,
		}
		if err := tx.CreateReview(ctx, &res.Review); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyReviewed
			}
			return err
		}

		sum, count, err := tx.ProductRatingTotals(ctx, in.ProductID)
		if err != nil {
			return err
		}
		res.Product = model.ProductRating{ID: in.ProductID, Rating: AverageRating(sum, count), Reviews: int(count)}
		return tx.UpdateProductRating(ctx, in.ProductID, res.Product.Rating, res.Product.Reviews)
	})
	if err != nil {
		if !IsValidation(err) && !isReviewRejection(err) {
			s.log.ErrorContext(ctx, "review transaction failed", "order_id", in.OrderID, "product_id", in.ProductID, "error", err)
		}
		return nil, err
	}
	metrics.ReviewsCreated.Inc()
	return &res, nil
}

// AverageRating returns sum/count rounded to two decimals, or zero when
// there are no reviews.
func AverageRating(sum, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(count)).Round(2)
}

func isReviewRejection(err error) bool {
	for _, e := range []error{ErrOrderNotOwned, ErrOrderNotDelivered, ErrProductNotInOrder, ErrAlreadyReviewed} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
