package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/service"
	"github.com/halchash/storefront/internal/utils"
)

// OrderAdmin is the order storage used by the back office.
type OrderAdmin interface {
	ListAll(ctx context.Context, status string) ([]model.Order, error)
	AdminStats(ctx context.Context) (model.AdminOrderStats, error)
	GetByID(ctx context.Context, id uint64) (model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	ResetAll(ctx context.Context) error
}

// UserLister lists customers for the back office.
type UserLister interface {
	List(ctx context.Context, withBlocked bool) ([]model.UserSummary, error)
}

// BlockList manages blocked phone numbers.
type BlockList interface {
	Enabled() bool
	List(ctx context.Context) ([]model.BlockedUser, error)
	Create(ctx context.Context, b *model.BlockedUser) error
	DeleteByID(ctx context.Context, id uint64) error
	DeleteByPhone(ctx context.Context, phone string) error
}

// HeroCurator replaces the homepage carousel.
type HeroCurator interface {
	ReplaceHero(ctx context.Context, ids []uint64) error
	Max() int
}

// AdminHandler serves orders, customers, the block list, hero curation,
// the data reset and analytics.
type AdminHandler struct {
	Orders    OrderAdmin
	Users     UserLister
	Blocked   BlockList
	Products  ProductReader
	Hero      HeroCurator
	Analytics service.MonthlySource
	Now       func() time.Time
}

func NewAdminHandler(orders OrderAdmin, users UserLister, blocked BlockList, products ProductReader,
	hero HeroCurator, analytics service.MonthlySource) *AdminHandler {
	return &AdminHandler{
		Orders:    orders,
		Users:     users,
		Blocked:   blocked,
		Products:  products,
		Hero:      hero,
		Analytics: analytics,
		Now:       time.Now,
	}
}

type statusReq struct {
	Status string `json:"status"`
}

type blockReq struct {
	ID     uint64 `json:"id"`
	Phone  string `json:"phone"`
	Reason string `json:"reason"`
}

type heroReq struct {
	HeroProducts []uint64 `json:"hero_products"`
}

type resetReq struct {
	Action string `json:"action"`
}

// resetAction must be sent verbatim to wipe order history.
const resetAction = "reset_all_data"

// ListOrders lists every order with item counts and dashboard stats.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	status := strings.ToLower(strings.TrimSpace(c.QueryParam("status")))
	if status == "all" {
		status = ""
	}
	if status != "" && !model.ValidOrderStatus(status) {
		return fail(c, http.StatusBadRequest, "Invalid status filter")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, err := h.Orders.ListAll(ctx, status)
	if err != nil {
		return failErr(c, err, "Failed to load orders")
	}
	stats, err := h.Orders.AdminStats(ctx)
	if err != nil {
		return failErr(c, err, "Failed to load orders")
	}
	return ok(c, http.StatusOK, echo.Map{"orders": orders, "stats": stats, "count": len(orders)})
}

// GetOrder returns any order with its items.
func (h *AdminHandler) GetOrder(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid order id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to load order")
	}
	return ok(c, http.StatusOK, echo.Map{"order": o})
}

// UpdateOrderStatus moves an order to any valid status.
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid order id")
	}
	var req statusReq
	if !bind(c, &req) {
		return nil
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !model.ValidOrderStatus(status) {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Orders.UpdateStatus(ctx, id, status); err != nil {
		return failErr(c, err, "Failed to update order status")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Order status updated", "status": status})
}

// ListUsers lists customers with order counts and their blocked flag.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx, h.Blocked.Enabled())
	if err != nil {
		return failErr(c, err, "Failed to load users")
	}
	return ok(c, http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// ListBlocked lists blocked phone numbers.  The list is empty when the
// block list has not been migrated.
func (h *AdminHandler) ListBlocked(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	bs, err := h.Blocked.List(ctx)
	if err != nil {
		return failErr(c, err, "Failed to load blocked users")
	}
	return ok(c, http.StatusOK, echo.Map{"blocked_users": bs, "count": len(bs)})
}

// Block adds a phone number to the block list.
func (h *AdminHandler) Block(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var req blockReq
	if !bind(c, &req) {
		return nil
	}
	phone := utils.NormalizePhone(req.Phone)
	if phone == "" {
		return fail(c, http.StatusBadRequest, "Phone number is required")
	}
	b := model.BlockedUser{
		Phone:     phone,
		Reason:    utils.Sanitize(req.Reason),
		BlockedBy: &adminID,
		BlockedAt: h.Now().UTC(),
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Blocked.Create(ctx, &b); err != nil {
		return failErr(c, err, "Failed to block phone number")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Phone number blocked", "blocked_user": b})
}

// Unblock removes a block by id or by phone, taken from the query string
// or the body.
func (h *AdminHandler) Unblock(c echo.Context) error {
	var req blockReq
	if raw := c.QueryParam("id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Invalid id")
		}
		req.ID = id
	}
	req.Phone = c.QueryParam("phone")
	if req.ID == 0 && req.Phone == "" && c.Request().ContentLength > 0 {
		if !bind(c, &req) {
			return nil
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	var err error
	switch phone := utils.NormalizePhone(req.Phone); {
	case req.ID != 0:
		err = h.Blocked.DeleteByID(ctx, req.ID)
	case phone != "":
		err = h.Blocked.DeleteByPhone(ctx, phone)
	default:
		return fail(c, http.StatusBadRequest, "id or phone is required")
	}
	if err != nil {
		return failErr(c, err, "Failed to unblock phone number")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Phone number unblocked"})
}

// GetHero returns every active product and the current carousel.
func (h *AdminHandler) GetHero(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	all, err := h.Products.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return failErr(c, err, "Failed to load products")
	}
	hero, err := h.Products.ListHero(ctx, h.Hero.Max())
	if err != nil {
		return failErr(c, err, "Failed to load hero products")
	}
	return ok(c, http.StatusOK, echo.Map{
		"products":      all,
		"hero_products": hero,
		"max":           h.Hero.Max(),
	})
}

// ReplaceHero replaces the carousel with the given ordered product ids.
func (h *AdminHandler) ReplaceHero(c echo.Context) error {
	var req heroReq
	if !bind(c, &req) {
		return nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Hero.ReplaceHero(ctx, req.HeroProducts); err != nil {
		return failErr(c, err, "Failed to update hero products")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Hero products updated", "hero_products": req.HeroProducts})
}

// ResetData deletes all reviews, order items and orders.
func (h *AdminHandler) ResetData(c echo.Context) error {
	var req resetReq
	if !bind(c, &req) {
		return nil
	}
	if req.Action != resetAction {
		return fail(c, http.StatusBadRequest, "Invalid action")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Orders.ResetAll(ctx); err != nil {
		return failErr(c, err, "Failed to reset data")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "All order data has been reset"})
}

// GetAnalytics reports delivered-order profit for the last ?months months.
func (h *AdminHandler) GetAnalytics(c echo.Context) error {
	months := service.DefaultAnalyticsMonths
	if raw := c.QueryParam("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fail(c, http.StatusBadRequest, "months must be a positive integer")
		}
		months = n
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	report, err := service.ProfitReport(ctx, h.Analytics, months, h.Now())
	if err != nil {
		return failErr(c, err, "Failed to load analytics")
	}
	return ok(c, http.StatusOK, echo.Map{"analytics": report})
}
