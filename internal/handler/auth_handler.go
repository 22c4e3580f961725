package handler

import (
	"net/http"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /auth のHTTP。セッションはhttpOnly CookieのJWT。
type AuthHandler struct {
	uc           *usecase.AuthUsecase
	cookieSecure bool
}

// DI。devではSecure Cookieを外す（httpでの動作確認用）。
func NewAuthHandler(uc *usecase.AuthUsecase, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		uc:           uc,
		cookieSecure: cfg.GoEnv != "dev",
	}
}

const sessionCookieMaxAge = 24 * time.Hour

// /auth を登録。/auth/me だけ認証が要る。
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/auth/signup", h.signup)
	e.POST("/auth/login", h.login)
	e.POST("/auth/google", h.googleLogin)
	e.POST("/auth/logout", h.logout)

	g := e.Group("/auth")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("/me", h.me)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req usecase.SignupInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Signup(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req usecase.LoginInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	h.setSessionCookie(c, res.Token)
	return c.JSON(http.StatusOK, res.User)
}

func (h *AuthHandler) googleLogin(c echo.Context) error {
	var req usecase.GoogleLoginInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.uc.GoogleLogin(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	h.setSessionCookie(c, res.Token)
	return c.JSON(http.StatusOK, res.User)
}

// Cookieを消すだけ。サーバー側に消す状態はない。
func (h *AuthHandler) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// ログイン状態の確認。middlewareが通ればclaimsをそのまま返す。
func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	name, _ := c.Get(middleware.CtxUserNameKey).(string)
	email, _ := c.Get(middleware.CtxUserEmailKey).(string)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":    userID,
		"name":  name,
		"email": email,
		"role":  role,
	})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionCookieMaxAge),
	})
}
