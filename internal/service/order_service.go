package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/metrics"
	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/queue"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/utils"
)

// CheckoutTx is the storage seen by one checkout attempt.  Every call runs
// inside the same transaction.
type CheckoutTx interface {
	PhoneBlocked(ctx context.Context, phone string) (bool, error)
	FindUserIDByEmail(ctx context.Context, email string) (uint64, bool, error)
	PhoneRegistered(ctx context.Context, phone string) (bool, error)
	CreateUser(ctx context.Context, u *model.User) error
	CreateOrder(ctx context.Context, o *model.Order) error
	ProductBuyingPrice(ctx context.Context, productID uint64) (decimal.Decimal, bool, error)
	CreateOrderItem(ctx context.Context, it *model.OrderItem) error
}

// CheckoutStore opens checkout transactions.  InCheckoutTx commits when fn
// returns nil and rolls back otherwise.
type CheckoutStore interface {
	BlockListEnabled() bool
	InCheckoutTx(ctx context.Context, fn func(CheckoutTx) error) error
}

// OrderEventPublisher receives committed orders.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}

// CustomerInput is the customer block of a checkout payload.
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ItemInput is one cart line.  ProductID may be zero for items that do not
// reference a catalog product.
type ItemInput struct {
	ProductID uint64          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// TotalsInput carries the totals shown to the customer.  A missing
// Shipping falls back to the configured default.
type TotalsInput struct {
	Subtotal decimal.Decimal     `json:"subtotal"`
	Total    decimal.Decimal     `json:"total"`
	Shipping decimal.NullDecimal `json:"shipping"`
}

// PlaceOrderInput is a complete checkout request.  UserID is zero for
// guest checkout.
type PlaceOrderInput struct {
	Customer CustomerInput
	Items    []ItemInput
	Totals   TotalsInput
	UserID   uint64
}

// PlaceOrderResult is the receipt of a committed order.  TemporaryPassword
// is only set when AccountCreated is true and is never stored in clear.
type PlaceOrderResult struct {
	Order             model.Order
	Items             []model.OrderItem
	Subtotal          decimal.Decimal
	UserID            uint64
	AccountCreated    bool
	TemporaryPassword string
}

// publishTimeout bounds the post-commit event publish.
const publishTimeout = 3 * time.Second

// OrderOptions configures an OrderService.
type OrderOptions struct {
	DefaultShipping decimal.Decimal
	BcryptCost      int
	Events          OrderEventPublisher
	Logger          *slog.Logger
	Now             func() time.Time
}

// OrderService runs the checkout workflow.
type OrderService struct {
	store CheckoutStore
	opts  OrderOptions
}

// NewOrderService returns an OrderService backed by store.
func NewOrderService(store CheckoutStore, opts OrderOptions) *OrderService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OrderService{store: store, opts: opts}
}

// PlaceOrder validates in, then inside one transaction checks the block
// list, resolves or provisions the customer account, and writes the order
// and its items.  Nothing is persisted unless every step succeeds.  The
// workflow is not idempotent: each call creates a new order number.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	customer, items, err := s.validate(in)
	if err != nil {
		metrics.CheckoutRejected.WithLabelValues("validation").Inc()
		return nil, err
	}
	phone := utils.NormalizePhone(customer.Phone)
	shipping := s.opts.DefaultShipping
	if in.Totals.Shipping.Valid {
		shipping = in.Totals.Shipping.Decimal
	}

	var res PlaceOrderResult
	err = s.store.InCheckoutTx(ctx, func(tx CheckoutTx) error {
		res = PlaceOrderResult{Subtotal: in.Totals.Subtotal}

		if s.store.BlockListEnabled() {
			blocked, err := tx.PhoneBlocked(ctx, phone)
			if err != nil {
				return err
			}
			if blocked {
				return ErrPhoneBlocked
			}
		}

		if err := s.resolveUser(ctx, tx, in.UserID, customer, phone, &res); err != nil {
			return err
		}

		number, err := utils.NewOrderNumber(s.opts.Now())
		if err != nil {
			return err
		}
		res.Order = model.Order{
			UserID:          res.UserID,
			OrderNumber:     number,
			TotalAmount:     in.Totals.Total,
			ShippingCost:    shipping,
			Status:          model.OrderPending,
			ShippingName:    customer.Name,
			ShippingEmail:   customer.Email,
			ShippingPhone:   customer.Phone,
			ShippingAddress: customer.Address,
		}
		if err := tx.CreateOrder(ctx, &res.Order); err != nil {
			return err
		}

		res.Items = make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			line := model.OrderItem{
				OrderID:      res.Order.ID,
				ProductName:  it.Name,
				ProductPrice: it.Price,
				Quantity:     it.Quantity,
				Subtotal:     it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
				BuyingPrice:  decimal.Zero,
			}
			if it.ProductID != 0 {
				cost, found, err := tx.ProductBuyingPrice(ctx, it.ProductID)
				if err != nil {
					return err
				}
				if found {
					id := it.ProductID
					line.ProductID = &id
					line.BuyingPrice = cost
				}
			}
			if err := tx.CreateOrderItem(ctx, &line); err != nil {
				return err
			}
			res.Items = append(res.Items, line)
		}
		res.Order.ItemsCount = len(res.Items)
		return nil
	})
	if err != nil {
		s.reject(ctx, err, customer.Email)
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(strconv.FormatBool(res.AccountCreated)).Inc()
	s.publish(ctx, &res)
	return &res, nil
}

// resolveUser adopts the authenticated user, an existing account with the
// same email, or provisions a new account with a temporary password.
func (s *OrderService) resolveUser(ctx context.Context, tx CheckoutTx, userID uint64, c CustomerInput, phone string, res *PlaceOrderResult) error {
	if userID != 0 {
		res.UserID = userID
		return nil
	}
	id, found, err := tx.FindUserIDByEmail(ctx, utils.NormalizeEmail(c.Email))
	if err != nil {
		return err
	}
	if found {
		res.UserID = id
		return nil
	}

	taken, err := tx.PhoneRegistered(ctx, phone)
	if err != nil {
		return err
	}
	if taken {
		return repository.ErrPhoneTaken
	}

	password, err := utils.TemporaryPassword()
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return err
	}
	u := model.User{
		Name:         c.Name,
		Email:        utils.NormalizeEmail(c.Email),
		PasswordHash: hash,
		Phone:        phone,
		Address:      c.Address,
		Avatar:       utils.AvatarURL(c.Name),
	}
	if err := tx.CreateUser(ctx, &u); err != nil {
		return err
	}
	res.UserID = u.ID
	res.AccountCreated = true
	res.TemporaryPassword = password
	return nil
}

// validate trims and checks the payload.  Items come back sanitized with
// quantity defaulted to 1.
func (s *OrderService) validate(in PlaceOrderInput) (CustomerInput, []ItemInput, error) {
	c := CustomerInput{
		Name:    strings.TrimSpace(in.Customer.Name),
		Email:   strings.TrimSpace(in.Customer.Email),
		Phone:   strings.TrimSpace(in.Customer.Phone),
		Address: strings.TrimSpace(in.Customer.Address),
	}
	missing := lo.Filter([]lo.Tuple2[string, string]{
		lo.T2("name", c.Name), lo.T2("email", c.Email), lo.T2("phone", c.Phone), lo.T2("address", c.Address),
	}, func(f lo.Tuple2[string, string], _ int) bool { return f.B == "" })
	if len(missing) > 0 {
		names := lo.Map(missing, func(f lo.Tuple2[string, string], _ int) string { return f.A })
		return c, nil, invalid("Missing required customer information: %s", strings.Join(names, ", "))
	}
	if utils.NormalizePhone(c.Phone) == "" {
		return c, nil, invalid("Invalid phone number")
	}
	if len(in.Items) == 0 {
		return c, nil, invalid("Order must contain at least one item")
	}
	if in.Totals.Subtotal.Sign() <= 0 || in.Totals.Total.Sign() <= 0 {
		return c, nil, invalid("Order totals are required")
	}
	if in.Totals.Shipping.Valid && in.Totals.Shipping.Decimal.Sign() < 0 {
		return c, nil, invalid("Shipping cost cannot be negative")
	}

	items := make([]ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		it.Name = utils.Sanitize(it.Name)
		if it.Name == "" || it.Price.Sign() <= 0 {
			return c, nil, invalid("Invalid product data provided")
		}
		if it.Quantity < 0 {
			return c, nil, invalid("Invalid quantity for %s", it.Name)
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		items = append(items, it)
	}
	return c, items, nil
}

func (s *OrderService) reject(ctx context.Context, err error, email string) {
	reason := "error"
	switch {
	case errors.Is(err, ErrPhoneBlocked):
		reason = "blocked"
	case errors.Is(err, repository.ErrPhoneTaken), errors.Is(err, repository.ErrEmailTaken):
		reason = "conflict"
	case errors.Is(err, repository.ErrDuplicateOrderNumber):
		reason = "order_number"
	}
	metrics.CheckoutRejected.WithLabelValues(reason).Inc()
	if reason == "error" || reason == "order_number" {
		s.opts.Logger.ErrorContext(ctx, "checkout transaction failed", "email", email, "error", err)
	}
}

func (s *OrderService) publish(ctx context.Context, res *PlaceOrderResult) {
	if s.opts.Events == nil {
		return
	}
	ev := queue.OrderPlacedEvent{
		OrderID:        res.Order.ID,
		OrderNumber:    res.Order.OrderNumber,
		UserID:         res.UserID,
		AccountCreated: res.AccountCreated,
		Total:          res.Order.TotalAmount.String(),
		ShippingCost:   res.Order.ShippingCost.String(),
		ItemCount:      len(res.Items),
		Items:          lo.Map(res.Items, func(it model.OrderItem, _ int) string { return it.ProductName }),
		PlacedAt:       s.opts.Now().UTC().Format(time.RFC3339),
	}
	// The order is committed; a broker failure must not fail the request.
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	_ = s.opts.Events.PublishOrderPlaced(pctx, ev)
}
