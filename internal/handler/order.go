package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/middleware"
	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/service"
)

// OrderPlacer runs the checkout workflow.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (*service.PlaceOrderResult, error)
}

// CustomerOrders reads a customer's order history.
type CustomerOrders interface {
	ListByUser(ctx context.Context, userID uint64, status string) ([]model.Order, error)
	GetForUser(ctx context.Context, id, userID uint64) (model.Order, error)
	StatsForUser(ctx context.Context, userID uint64) (model.CustomerOrderStats, error)
}

// ReviewedLookup reports which (order, product) pairs a customer reviewed.
type ReviewedLookup interface {
	ReviewedBy(ctx context.Context, userID uint64) (map[repository.ReviewedKey]bool, error)
}

// OrderHandler serves checkout and the customer's order history.
type OrderHandler struct {
	Checkout OrderPlacer
	Orders   CustomerOrders
	Reviewed ReviewedLookup
}

func NewOrderHandler(checkout OrderPlacer, orders CustomerOrders, reviewed ReviewedLookup) *OrderHandler {
	return &OrderHandler{Checkout: checkout, Orders: orders, Reviewed: reviewed}
}

type placeOrderReq struct {
	Customer service.CustomerInput `json:"customer"`
	Items    []service.ItemInput   `json:"items"`
	Totals   service.TotalsInput   `json:"totals"`
	UserID   uint64                `json:"user_id"`
}

type orderReceipt struct {
	ID           uint64            `json:"id"`
	OrderNumber  string            `json:"order_number"`
	Total        decimal.Decimal   `json:"total"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	ShippingCost decimal.Decimal   `json:"shipping_cost"`
	Status       string            `json:"status"`
	Items        []model.OrderItem `json:"items"`
}

// Create places an order for a guest or the authenticated customer.  A
// user_id in the body is only accepted when it matches the token.
func (h *OrderHandler) Create(c echo.Context) error {
	var req placeOrderReq
	if !bind(c, &req) {
		return nil
	}

	var uid uint64
	if id, ok := middleware.PrincipalID(c); ok && middleware.Role(c) == model.RoleCustomer {
		uid = id
	}
	if req.UserID != 0 && req.UserID != uid {
		return fail(c, http.StatusForbidden, "user_id does not match the signed-in account")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Checkout.PlaceOrder(ctx, service.PlaceOrderInput{
		Customer: req.Customer,
		Items:    req.Items,
		Totals:   req.Totals,
		UserID:   uid,
	})
	if err != nil {
		return failErr(c, err, "Failed to place order. Please try again.")
	}

	body := echo.Map{
		"message": "Order placed successfully",
		"order": orderReceipt{
			ID:           res.Order.ID,
			OrderNumber:  res.Order.OrderNumber,
			Total:        res.Order.TotalAmount,
			Subtotal:     res.Subtotal,
			ShippingCost: res.Order.ShippingCost,
			Status:       res.Order.Status,
			Items:        res.Items,
		},
		"user_id":         res.UserID,
		"account_created": res.AccountCreated,
	}
	if res.AccountCreated {
		body["temporary_password"] = res.TemporaryPassword
		body["message"] = "Order placed successfully. An account was created for you; use the temporary password to sign in."
	}
	return ok(c, http.StatusCreated, body)
}

// List returns the customer's orders, optionally filtered by ?status,
// with per-status counts.  Items of delivered orders carry a reviewed flag.
func (h *OrderHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	status := strings.ToLower(strings.TrimSpace(c.QueryParam("status")))
	if status == "all" {
		status = ""
	}
	if status != "" && !model.ValidOrderStatus(status) {
		return fail(c, http.StatusBadRequest, "Invalid status filter")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, err := h.Orders.ListByUser(ctx, uid, status)
	if err != nil {
		return failErr(c, err, "Failed to load orders")
	}
	reviewed, err := h.Reviewed.ReviewedBy(ctx, uid)
	if err != nil {
		return failErr(c, err, "Failed to load orders")
	}
	markReviewed(orders, reviewed)
	stats, err := h.Orders.StatsForUser(ctx, uid)
	if err != nil {
		return failErr(c, err, "Failed to load orders")
	}
	return ok(c, http.StatusOK, echo.Map{"orders": orders, "stats": stats, "count": len(orders)})
}

// Get returns one of the customer's orders.
func (h *OrderHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid order id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Orders.GetForUser(ctx, id, uid)
	if err != nil {
		return failErr(c, err, "Failed to load order")
	}
	reviewed, err := h.Reviewed.ReviewedBy(ctx, uid)
	if err != nil {
		return failErr(c, err, "Failed to load order")
	}
	orders := []model.Order{o}
	markReviewed(orders, reviewed)
	return ok(c, http.StatusOK, echo.Map{"order": orders[0]})
}

func markReviewed(orders []model.Order, reviewed map[repository.ReviewedKey]bool) {
	for i := range orders {
		if orders[i].Status != model.OrderDelivered {
			continue
		}
		for j := range orders[i].Items {
			it := &orders[i].Items[j]
			if it.ProductID == nil {
				continue
			}
			r := reviewed[repository.ReviewedKey{OrderID: orders[i].ID, ProductID: *it.ProductID}]
			it.Reviewed = &r
		}
	}
}
