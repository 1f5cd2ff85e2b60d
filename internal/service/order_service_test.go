package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/utils"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func checkoutInput(email, phone string) PlaceOrderInput {
	return PlaceOrderInput{
		Customer: CustomerInput{Name: "Rahim Uddin", Email: email, Phone: phone, Address: "12 Lake Road, Dhaka"},
		Items: []ItemInput{
			{ProductID: 1, Name: "Mustard Oil", Price: dec("200"), Quantity: 1},
			{ProductID: 2, Name: "Sundarban Honey", Price: dec("150"), Quantity: 2},
		},
		Totals: TotalsInput{
			Subtotal: dec("500"),
			Total:    dec("560"),
			Shipping: decimal.NewNullDecimal(dec("60")),
		},
	}
}

func newOrderFixture() (*memStore, *OrderService, *recordingPublisher) {
	store := newMemStore()
	store.addProduct(1, "120")
	store.addProduct(2, "90")
	pub := &recordingPublisher{}
	svc := NewOrderService(store, OrderOptions{
		DefaultShipping: dec("50"),
		BcryptCost:      4,
		Events:          pub,
		Now:             func() time.Time { return time.Unix(1700000000, 0) },
	})
	return store, svc, pub
}

func TestPlaceOrderNewCustomer(t *testing.T) {
	store, svc, pub := newOrderFixture()

	res, err := svc.PlaceOrder(context.Background(), checkoutInput("a@x.com", "017-1234 5678"))
	require.NoError(t, err)

	assert.True(t, res.AccountCreated)
	assert.Len(t, res.TemporaryPassword, 12)
	assert.True(t, res.Order.TotalAmount.Equal(dec("560")))
	assert.True(t, res.Order.ShippingCost.Equal(dec("60")))
	assert.True(t, res.Subtotal.Equal(dec("500")))
	assert.Equal(t, model.OrderPending, res.Order.Status)
	assert.Regexp(t, `^HAL-6553F100-[0-9A-F]{6}$`, res.Order.OrderNumber)
	assert.Equal(t, []string{res.Order.OrderNumber}, pub.events)

	u := store.state.users[res.UserID]
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "01712345678", u.Phone)
	assert.Equal(t, utils.AvatarURL("Rahim Uddin"), u.Avatar)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, res.TemporaryPassword))

	require.Len(t, store.state.items, 2)
	second := store.state.items[1]
	assert.True(t, second.Subtotal.Equal(dec("300")))
	assert.True(t, second.BuyingPrice.Equal(dec("90")))
	require.NotNil(t, second.ProductID)
	assert.Equal(t, uint64(2), *second.ProductID)

	// The snapshot keeps the raw customer phone.
	assert.Equal(t, "017-1234 5678", store.state.orders[res.Order.ID].ShippingPhone)
}

func TestPlaceOrderSameEmailReusesAccount(t *testing.T) {
	store, svc, _ := newOrderFixture()
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, checkoutInput("a@x.com", "01712345678"))
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, checkoutInput("A@X.com", "01712345678"))
	require.NoError(t, err)

	assert.False(t, second.AccountCreated)
	assert.Empty(t, second.TemporaryPassword)
	assert.Equal(t, first.UserID, second.UserID)
	assert.NotEqual(t, first.Order.OrderNumber, second.Order.OrderNumber)
	assert.Len(t, store.state.users, 1)
	assert.Len(t, store.state.orders, 2)
}

func TestPlaceOrderPhoneTakenByAnotherAccount(t *testing.T) {
	store, svc, _ := newOrderFixture()
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, checkoutInput("a@x.com", "01712345678"))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, checkoutInput("b@x.com", "017 1234 5678"))
	assert.ErrorIs(t, err, repository.ErrPhoneTaken)
	assert.Len(t, store.state.users, 1)
	assert.Len(t, store.state.orders, 1)
	assert.Len(t, store.state.items, 2)
}

func TestPlaceOrderBlockedPhone(t *testing.T) {
	store, svc, pub := newOrderFixture()
	store.state.blocked["01712345678"] = true

	in := checkoutInput("a@x.com", "017 1234-5678")
	for i := 0; i < 10; i++ {
		in.Items = append(in.Items, ItemInput{Name: "Extra", Price: dec("10"), Quantity: 1})
	}
	_, err := svc.PlaceOrder(context.Background(), in)
	assert.ErrorIs(t, err, ErrPhoneBlocked)
	assert.Empty(t, store.state.users)
	assert.Empty(t, store.state.orders)
	assert.Empty(t, store.state.items)
	assert.Empty(t, pub.events)
}

func TestPlaceOrderBlockListDisabled(t *testing.T) {
	store, svc, _ := newOrderFixture()
	store.state.blocked["01712345678"] = true
	store.blockEnabled = false

	_, err := svc.PlaceOrder(context.Background(), checkoutInput("a@x.com", "01712345678"))
	assert.NoError(t, err)
}

func TestPlaceOrderItemFailureRollsBack(t *testing.T) {
	for n := 1; n <= 3; n++ {
		for k := 1; k <= n; k++ {
			store, svc, pub := newOrderFixture()
			store.failItemAt = k

			in := checkoutInput("a@x.com", "01712345678")
			in.Items = nil
			for i := 0; i < n; i++ {
				in.Items = append(in.Items, ItemInput{ProductID: 1, Name: "Oil", Price: dec("100"), Quantity: 1})
			}
			_, err := svc.PlaceOrder(context.Background(), in)
			require.ErrorIs(t, err, errInjected, "n=%d k=%d", n, k)
			assert.Empty(t, store.state.orders, "n=%d k=%d", n, k)
			assert.Empty(t, store.state.items, "n=%d k=%d", n, k)
			assert.Empty(t, store.state.users, "n=%d k=%d", n, k)
			assert.Empty(t, pub.events)
		}
	}
}

func TestPlaceOrderDuplicateOrderNumber(t *testing.T) {
	store, svc, _ := newOrderFixture()
	store.failOrder = repository.ErrDuplicateOrderNumber

	_, err := svc.PlaceOrder(context.Background(), checkoutInput("a@x.com", "01712345678"))
	assert.ErrorIs(t, err, repository.ErrDuplicateOrderNumber)
	assert.Empty(t, store.state.users)
}

func TestPlaceOrderAuthenticatedUser(t *testing.T) {
	store, svc, _ := newOrderFixture()
	in := checkoutInput("someone@x.com", "01811111111")
	in.UserID = 42

	res, err := svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), res.UserID)
	assert.False(t, res.AccountCreated)
	assert.Empty(t, store.state.users)
	assert.Equal(t, uint64(42), store.state.orders[res.Order.ID].UserID)
}

func TestPlaceOrderDefaultsAndMissingProducts(t *testing.T) {
	store, svc, _ := newOrderFixture()
	in := checkoutInput("a@x.com", "")
	in.Customer.Phone = "   "
	in.Totals.Shipping = decimal.NullDecimal{}
	in.Items = []ItemInput{
		{ProductID: 999, Name: "<b>Gone</b> Tea", Price: dec("80")},
		{Name: "Loose item", Price: dec("20"), Quantity: 3},
	}

	_, err := svc.PlaceOrder(context.Background(), in)
	require.Error(t, err)
	assert.True(t, IsValidation(err), "blank phone is a missing field")

	in.Customer.Phone = "01912345678"
	res, err := svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Order.ShippingCost.Equal(dec("50")))

	require.Len(t, store.state.items, 2)
	gone := store.state.items[0]
	assert.Nil(t, gone.ProductID)
	assert.True(t, gone.BuyingPrice.IsZero())
	assert.Equal(t, 1, gone.Quantity)
	assert.Equal(t, "Gone Tea", gone.ProductName)
	assert.True(t, store.state.items[1].Subtotal.Equal(dec("60")))
}

func TestPlaceOrderValidation(t *testing.T) {
	cases := map[string]func(*PlaceOrderInput){
		"missing name":      func(in *PlaceOrderInput) { in.Customer.Name = "" },
		"missing address":   func(in *PlaceOrderInput) { in.Customer.Address = " " },
		"phone sans digits": func(in *PlaceOrderInput) { in.Customer.Phone = "N/A" },
		"no items":          func(in *PlaceOrderInput) { in.Items = nil },
		"zero subtotal":     func(in *PlaceOrderInput) { in.Totals.Subtotal = decimal.Zero },
		"zero total":        func(in *PlaceOrderInput) { in.Totals.Total = decimal.Zero },
		"empty item name":   func(in *PlaceOrderInput) { in.Items[1].Name = "<i></i>" },
		"zero item price":   func(in *PlaceOrderInput) { in.Items[0].Price = decimal.Zero },
		"negative price":    func(in *PlaceOrderInput) { in.Items[0].Price = dec("-5") },
		"negative qty":      func(in *PlaceOrderInput) { in.Items[0].Quantity = -1 },
		"negative shipping": func(in *PlaceOrderInput) { in.Totals.Shipping = decimal.NewNullDecimal(dec("-1")) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store, svc, _ := newOrderFixture()
			in := checkoutInput("a@x.com", "01712345678")
			mutate(&in)

			_, err := svc.PlaceOrder(context.Background(), in)
			require.Error(t, err)
			assert.True(t, IsValidation(err), err.Error())
			assert.Empty(t, store.state.orders)
			assert.Empty(t, store.state.users)
		})
	}
}

func TestPlaceOrderMissingFieldsNamed(t *testing.T) {
	_, svc, _ := newOrderFixture()
	in := checkoutInput("", "")
	_, err := svc.PlaceOrder(context.Background(), in)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Missing required customer information: email, phone", verr.Msg)
}

func TestPlaceOrderPublishFailureIsIgnored(t *testing.T) {
	store, svc, pub := newOrderFixture()
	pub.err = errors.New("broker down")

	start := time.Now()
	res, err := svc.PlaceOrder(context.Background(), checkoutInput("a@x.com", "01712345678"))
	require.NoError(t, err)
	assert.Contains(t, store.state.orders, res.Order.ID)

	// The publish runs under its own bound even when the caller has none.
	require.False(t, pub.deadline.IsZero())
	assert.WithinDuration(t, start.Add(publishTimeout), pub.deadline, time.Second)
}
