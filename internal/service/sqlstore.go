package service

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
)

// SQLStore implements CheckoutStore, ReviewStore and HeroStore on top of
// the MySQL repositories.
type SQLStore struct {
	DB       *sql.DB
	Users    *repository.UserRepo
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
	Reviews  *repository.ReviewRepo
	Blocked  *repository.BlockedUserRepo
}

// NewSQLStore wires the repositories needed by the workflows.
func NewSQLStore(db *sql.DB, blocked *repository.BlockedUserRepo) *SQLStore {
	return &SQLStore{
		DB:       db,
		Users:    repository.NewUserRepo(db),
		Orders:   repository.NewOrderRepo(db),
		Products: repository.NewProductRepo(db),
		Reviews:  repository.NewReviewRepo(db),
		Blocked:  blocked,
	}
}

// BlockListEnabled reports whether the blocked_users table was detected.
func (s *SQLStore) BlockListEnabled() bool {
	return s.Blocked != nil && s.Blocked.Enabled()
}

// InCheckoutTx runs fn in a database transaction.
func (s *SQLStore) InCheckoutTx(ctx context.Context, fn func(CheckoutTx) error) error {
	return repository.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(sqlTx{s: s, tx: tx})
	})
}

// InReviewTx runs fn in a database transaction.
func (s *SQLStore) InReviewTx(ctx context.Context, fn func(ReviewTx) error) error {
	return repository.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(sqlTx{s: s, tx: tx})
	})
}

// InHeroTx runs fn in a database transaction.
func (s *SQLStore) InHeroTx(ctx context.Context, fn func(HeroTx) error) error {
	return repository.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(sqlTx{s: s, tx: tx})
	})
}

type sqlTx struct {
	s  *SQLStore
	tx *sql.Tx
}

func (t sqlTx) PhoneBlocked(ctx context.Context, phone string) (bool, error) {
	return t.s.Blocked.IsBlockedTx(ctx, t.tx, phone)
}

func (t sqlTx) FindUserIDByEmail(ctx context.Context, email string) (uint64, bool, error) {
	return t.s.Users.FindIDByEmailTx(ctx, t.tx, email)
}

func (t sqlTx) PhoneRegistered(ctx context.Context, phone string) (bool, error) {
	return t.s.Users.PhoneExistsTx(ctx, t.tx, phone)
}

func (t sqlTx) CreateUser(ctx context.Context, u *model.User) error {
	return t.s.Users.CreateTx(ctx, t.tx, u)
}

func (t sqlTx) CreateOrder(ctx context.Context, o *model.Order) error {
	return t.s.Orders.CreateTx(ctx, t.tx, o)
}

func (t sqlTx) ProductBuyingPrice(ctx context.Context, id uint64) (decimal.Decimal, bool, error) {
	return t.s.Products.BuyingPriceTx(ctx, t.tx, id)
}

func (t sqlTx) CreateOrderItem(ctx context.Context, it *model.OrderItem) error {
	return t.s.Orders.CreateItemTx(ctx, t.tx, it)
}

func (t sqlTx) OrderStatusForUser(ctx context.Context, orderID, userID uint64) (string, bool, error) {
	return t.s.Orders.StatusForUserTx(ctx, t.tx, orderID, userID)
}

func (t sqlTx) OrderHasProduct(ctx context.Context, orderID, productID uint64) (bool, error) {
	return t.s.Orders.HasProductTx(ctx, t.tx, orderID, productID)
}

func (t sqlTx) ReviewExists(ctx context.Context, userID, productID, orderID uint64) (bool, error) {
	return t.s.Reviews.ExistsTx(ctx, t.tx, userID, productID, orderID)
}

func (t sqlTx) CreateReview(ctx context.Context, rv *model.Review) error {
	return t.s.Reviews.CreateTx(ctx, t.tx, rv)
}

func (t sqlTx) ProductRatingTotals(ctx context.Context, productID uint64) (int64, int64, error) {
	return t.s.Products.RatingTotalsTx(ctx, t.tx, productID)
}

func (t sqlTx) UpdateProductRating(ctx context.Context, productID uint64, rating decimal.Decimal, reviews int) error {
	return t.s.Products.UpdateRatingTx(ctx, t.tx, productID, rating, reviews)
}

func (t sqlTx) ClearHeroOrder(ctx context.Context) error {
	return t.s.Products.ClearHeroOrderTx(ctx, t.tx)
}

func (t sqlTx) SetHeroOrder(ctx context.Context, id uint64, position int) (bool, error) {
	return t.s.Products.SetHeroOrderTx(ctx, t.tx, id, position)
}
