package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/config"
	"github.com/halchash/storefront/internal/middleware"
	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/utils"
)

// AdminStore is the back-office account storage.
type AdminStore interface {
	GetByLogin(ctx context.Context, login string) (model.Admin, error)
	GetByID(ctx context.Context, id uint64) (model.Admin, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// AdminAuthHandler serves admin login and account endpoints.
type AdminAuthHandler struct {
	Cfg    config.Config
	Admins AdminStore
}

func NewAdminAuthHandler(cfg config.Config, admins AdminStore) *AdminAuthHandler {
	return &AdminAuthHandler{Cfg: cfg, Admins: admins}
}

type adminLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login accepts a username or an email.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req adminLoginReq
	if !bind(c, &req) {
		return nil
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Username and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Admins.GetByLogin(ctx, req.Username)
	if errors.Is(err, repository.ErrAdminNotFound) || (err == nil && !utils.VerifyPassword(a.PasswordHash, req.Password)) {
		return fail(c, http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return failErr(c, err, "Login failed")
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, a.ID, model.RoleAdmin, a.Email, h.Cfg.TokenTTL)
	if err != nil {
		return failErr(c, err, "Failed to issue token")
	}
	setTokenCookie(c, middleware.AdminCookie, tok.Token, tok.Exp, h.Cfg.CookieSecure)
	return ok(c, http.StatusOK, echo.Map{"admin": a, "token": tok.Token, "expires_at": tok.Exp})
}

// Logout clears the admin cookie.
func (h *AdminAuthHandler) Logout(c echo.Context) error {
	clearTokenCookie(c, middleware.AdminCookie, h.Cfg.CookieSecure)
	return ok(c, http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the authenticated admin.
func (h *AdminAuthHandler) Me(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Admins.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to load admin")
	}
	return ok(c, http.StatusOK, echo.Map{"admin": a})
}

// ChangePassword replaces the admin password after checking the current one.
func (h *AdminAuthHandler) ChangePassword(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var req passwordReq
	if !bind(c, &req) {
		return nil
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < utils.MinPasswordLength {
		return fail(c, http.StatusBadRequest, "Current password and a new password of at least 6 characters are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	a, err := h.Admins.GetByID(ctx, id)
	if err != nil {
		return failErr(c, err, "Failed to change password")
	}
	if !utils.VerifyPassword(a.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "Current password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err, "Failed to change password")
	}
	if err := h.Admins.UpdatePassword(ctx, id, hash); err != nil {
		return failErr(c, err, "Failed to change password")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Password changed"})
}
