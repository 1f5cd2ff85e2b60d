package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/halchash/storefront/internal/config"
	"github.com/halchash/storefront/internal/middleware"
	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/repository"
	"github.com/halchash/storefront/internal/utils"
)

// UserStore is the customer account storage used by AuthHandler.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateProfile(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// AuthHandler serves customer signup, login and profile endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type profileReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
type passwordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// setTokenCookie stores the access token in an HttpOnly cookie.
func setTokenCookie(c echo.Context, name, token string, exp time.Time, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(c echo.Context, name string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// issue signs a customer token, sets the cookie and writes the response.
func (h *AuthHandler) issue(c echo.Context, status int, u model.User) error {
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, model.RoleCustomer, u.Email, h.Cfg.TokenTTL)
	if err != nil {
		return failErr(c, err, "Failed to issue token")
	}
	setTokenCookie(c, middleware.CustomerCookie, tok.Token, tok.Exp, h.Cfg.CookieSecure)
	return ok(c, status, echo.Map{"user": u, "token": tok.Token, "expires_at": tok.Exp})
}

// Signup creates a customer account and logs it in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if !bind(c, &req) {
		return nil
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Name, email and password are required")
	}
	if !utils.ValidEmail(req.Email) {
		return fail(c, http.StatusBadRequest, "Invalid email format")
	}
	if len(req.Password) < utils.MinPasswordLength {
		return fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err, "Registration failed")
	}
	u := model.User{
		Name:         utils.Sanitize(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        utils.NormalizePhone(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Avatar:       utils.AvatarURL(req.Name),
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Create(ctx, &u); err != nil {
		return failErr(c, err, "Registration failed")
	}
	return h.issue(c, http.StatusCreated, u)
}

// Login verifies email and password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if !bind(c, &req) {
		return nil
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && !utils.VerifyPassword(u.PasswordHash, req.Password)) {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return failErr(c, err, "Login failed")
	}
	return h.issue(c, http.StatusOK, u)
}

// Logout clears the customer cookie.  Tokens are stateless, so a copy held
// elsewhere stays valid until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	clearTokenCookie(c, middleware.CustomerCookie, h.Cfg.CookieSecure)
	return ok(c, http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the authenticated customer.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failErr(c, err, "Failed to load user")
	}
	return ok(c, http.StatusOK, echo.Map{"user": u})
}

// UpdateProfile overwrites name, email, phone and address.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var req profileReq
	if !bind(c, &req) {
		return nil
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" {
		return fail(c, http.StatusBadRequest, "Name and email are required")
	}
	if !utils.ValidEmail(req.Email) {
		return fail(c, http.StatusBadRequest, "Invalid email format")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failErr(c, err, "Failed to update profile")
	}
	u.Name = utils.Sanitize(req.Name)
	u.Email = req.Email
	u.Phone = utils.NormalizePhone(req.Phone)
	u.Address = strings.TrimSpace(req.Address)
	if err := h.Users.UpdateProfile(ctx, u); err != nil {
		return failErr(c, err, "Failed to update profile")
	}
	return ok(c, http.StatusOK, echo.Map{"user": u, "message": "Profile updated"})
}

// ChangePassword replaces the password after checking the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var req passwordReq
	if !bind(c, &req) {
		return nil
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "Current and new password are required")
	}
	if len(req.NewPassword) < utils.MinPasswordLength {
		return fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return failErr(c, err, "Failed to change password")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "Current password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return failErr(c, err, "Failed to change password")
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return failErr(c, err, "Failed to change password")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Password changed"})
}
