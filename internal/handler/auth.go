package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/metrics"
	"github.com/iliyamo/fitness-center-listings/internal/validation"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Svc     *auth.Service
	Metrics *metrics.Metrics
}

func NewAuthHandler(svc *auth.Service, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{Svc: svc, Metrics: m}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	Refresh string `json:"refresh"`
}
type userResp struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

var detailBadRefresh = echo.Map{"detail": "token is invalid or expired"}

// Register: create an account.  No tokens are issued; clients log in next.
func (h *AuthHandler) Register(c echo.Context) error {
	var req auth.RegisterInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detailBadBody)
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			h.Metrics.AuthEvent("register_rejected")
		}
		return writeError(c, err)
	}
	h.Metrics.AuthEvent("register")
	return c.JSON(http.StatusCreated, userResp{ID: u.ID, Username: u.Username, Email: u.Email})
}

// Login: verify credentials and return an access/refresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detailBadBody)
	}
	errs := validation.Errors{}
	if strings.TrimSpace(req.Username) == "" {
		errs.Add("username", validation.MsgRequired)
	}
	if req.Password == "" {
		errs.Add("password", validation.MsgRequired)
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Metrics.AuthEvent("login_failed")
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "no active account found with the given credentials"})
		}
		return writeError(c, err)
	}
	h.Metrics.AuthEvent("login")
	return c.JSON(http.StatusOK, pair)
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detailBadBody)
	}
	if strings.TrimSpace(req.Refresh) == "" {
		return c.JSON(http.StatusBadRequest, validation.Errors{"refresh": {validation.MsgRequired}})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	pair, err := h.Svc.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			h.Metrics.AuthEvent("refresh_failed")
			return c.JSON(http.StatusUnauthorized, detailBadRefresh)
		}
		return writeError(c, err)
	}
	h.Metrics.AuthEvent("refresh")
	return c.JSON(http.StatusOK, pair)
}

// Logout: revoke the given refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, detailBadBody)
	}
	if strings.TrimSpace(req.Refresh) == "" {
		return c.JSON(http.StatusBadRequest, validation.Errors{"refresh": {validation.MsgRequired}})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	if err := h.Svc.Logout(ctx, req.Refresh); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, detailBadRefresh)
		}
		return writeError(c, err)
	}
	h.Metrics.AuthEvent("logout")
	return c.NoContent(http.StatusNoContent)
}
