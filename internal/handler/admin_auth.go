package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/config"
	"github.com/iliyamo/practice-booking/internal/middleware"
	"github.com/iliyamo/practice-booking/internal/utils"
)

// AdminAuthHandler logs the single admin account in and out.
type AdminAuthHandler struct {
	Cfg config.Config
	Log zerolog.Logger
}

// NewAdminAuthHandler builds the login handler for the admin in cfg.
func NewAdminAuthHandler(cfg config.Config, log zerolog.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{Cfg: cfg, Log: log}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials and sets the admin-auth session cookie.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "Email and password are required")
	}

	// both checks always run
	emailOK := utils.SameEmail(req.Email, h.Cfg.AdminEmail)
	passOK := utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password)
	if !emailOK || !passOK {
		h.Log.Warn().Str("ip", c.RealIP()).Msg("admin login failed")
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, h.Cfg.AdminEmail, utils.RoleAdmin, h.Cfg.SessionTTL)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	c.SetCookie(h.cookie(tok.Token, tok.Exp))
	h.Log.Info().Str("ip", c.RealIP()).Msg("admin logged in")
	return c.JSON(http.StatusOK, echo.Map{"success": true, "expiresAt": tok.Exp})
}

// Logout expires the session cookie.
func (h *AdminAuthHandler) Logout(c echo.Context) error {
	ck := h.cookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	c.SetCookie(ck)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Session reports who is logged in; it sits behind AdminSession.
func (h *AdminAuthHandler) Session(c echo.Context) error {
	email, _ := c.Get("user_id").(string)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "email": email})
}

func (h *AdminAuthHandler) cookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}
