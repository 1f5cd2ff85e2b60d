package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/queue"
	"github.com/halchash/storefront/internal/repository"
)

// memState is the committed content of the in-memory store.
type memState struct {
	users    map[uint64]model.User
	orders   map[uint64]model.Order
	items    []model.OrderItem
	products map[uint64]model.Product
	reviews  []model.Review
	blocked  map[string]bool
	nextID   uint64
}

func (s memState) clone() memState {
	return memState{
		users:    maps.Clone(s.users),
		orders:   maps.Clone(s.orders),
		items:    slices.Clone(s.items),
		products: maps.Clone(s.products),
		reviews:  slices.Clone(s.reviews),
		blocked:  maps.Clone(s.blocked),
		nextID:   s.nextID,
	}
}

// memStore is a transactional fake: each transaction works on a copy that
// replaces the committed state only when fn succeeds.
type memStore struct {
	state        memState
	blockEnabled bool

	failItemAt  int // 1-based item insert that fails; 0 disables
	itemInserts int
	failOrder   error
}

var errInjected = errors.New("injected failure")

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			users:    map[uint64]model.User{},
			orders:   map[uint64]model.Order{},
			products: map[uint64]model.Product{},
			blocked:  map[string]bool{},
			nextID:   100,
		},
		blockEnabled: true,
	}
}

func (m *memStore) addProduct(id uint64, buying string) {
	m.state.products[id] = model.Product{ID: id, Name: "p", BuyingPrice: decimal.RequireFromString(buying)}
}

func (m *memStore) run(fn func(tx *memTx) error) error {
	tx := &memTx{m: m, st: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.st
	return nil
}

func (m *memStore) BlockListEnabled() bool { return m.blockEnabled }

func (m *memStore) InCheckoutTx(_ context.Context, fn func(CheckoutTx) error) error {
	return m.run(func(tx *memTx) error { return fn(tx) })
}

func (m *memStore) InReviewTx(_ context.Context, fn func(ReviewTx) error) error {
	return m.run(func(tx *memTx) error { return fn(tx) })
}

func (m *memStore) InHeroTx(_ context.Context, fn func(HeroTx) error) error {
	return m.run(func(tx *memTx) error { return fn(tx) })
}

type memTx struct {
	m  *memStore
	st memState
}

func (t *memTx) id() uint64 {
	t.st.nextID++
	return t.st.nextID
}

func (t *memTx) PhoneBlocked(_ context.Context, phone string) (bool, error) {
	return t.st.blocked[phone], nil
}

func (t *memTx) FindUserIDByEmail(_ context.Context, email string) (uint64, bool, error) {
	for _, u := range t.st.users {
		if u.Email == email {
			return u.ID, true, nil
		}
	}
	return 0, false, nil
}

func (t *memTx) PhoneRegistered(_ context.Context, phone string) (bool, error) {
	for _, u := range t.st.users {
		if u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateUser(_ context.Context, u *model.User) error {
	for _, e := range t.st.users {
		if e.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	u.ID = t.id()
	t.st.users[u.ID] = *u
	return nil
}

func (t *memTx) CreateOrder(_ context.Context, o *model.Order) error {
	if t.m.failOrder != nil {
		return t.m.failOrder
	}
	o.ID = t.id()
	t.st.orders[o.ID] = *o
	return nil
}

func (t *memTx) ProductBuyingPrice(_ context.Context, id uint64) (decimal.Decimal, bool, error) {
	p, ok := t.st.products[id]
	if !ok {
		return decimal.Zero, false, nil
	}
	return p.BuyingPrice, true, nil
}

func (t *memTx) CreateOrderItem(_ context.Context, it *model.OrderItem) error {
	t.m.itemInserts++
	if t.m.failItemAt != 0 && t.m.itemInserts == t.m.failItemAt {
		return errInjected
	}
	it.ID = t.id()
	t.st.items = append(t.st.items, *it)
	return nil
}

func (t *memTx) OrderStatusForUser(_ context.Context, orderID, userID uint64) (string, bool, error) {
	o, ok := t.st.orders[orderID]
	if !ok || o.UserID != userID {
		return "", false, nil
	}
	return o.Status, true, nil
}

func (t *memTx) OrderHasProduct(_ context.Context, orderID, productID uint64) (bool, error) {
	for _, it := range t.st.items {
		if it.OrderID == orderID && it.ProductID != nil && *it.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ReviewExists(_ context.Context, userID, productID, orderID uint64) (bool, error) {
	for _, rv := range t.st.reviews {
		if rv.UserID == userID && rv.ProductID == productID && rv.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateReview(_ context.Context, rv *model.Review) error {
	rv.ID = t.id()
	t.st.reviews = append(t.st.reviews, *rv)
	return nil
}

func (t *memTx) ProductRatingTotals(_ context.Context, productID uint64) (int64, int64, error) {
	var sum, count int64
	for _, rv := range t.st.reviews {
		if rv.ProductID == productID {
			sum += int64(rv.Rating)
			count++
		}
	}
	return sum, count, nil
}

func (t *memTx) UpdateProductRating(_ context.Context, productID uint64, rating decimal.Decimal, reviews int) error {
	p := t.st.products[productID]
	p.Rating = rating
	p.Reviews = reviews
	t.st.products[productID] = p
	return nil
}

func (t *memTx) ClearHeroOrder(context.Context) error {
	for id, p := range t.st.products {
		p.HeroOrder = nil
		t.st.products[id] = p
	}
	return nil
}

func (t *memTx) SetHeroOrder(_ context.Context, id uint64, position int) (bool, error) {
	p, ok := t.st.products[id]
	if !ok {
		return false, nil
	}
	pos := position
	p.HeroOrder = &pos
	t.st.products[id] = p
	return true, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	events   []string
	err      error
	deadline time.Time
}

func (p *recordingPublisher) PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error {
	p.events = append(p.events, ev.OrderNumber)
	p.deadline, _ = ctx.Deadline()
	return p.err
}
