package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"app/internal/config"
	"app/internal/middleware"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return s
}

func doRequest(cookie *http.Cookie, next echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cfg := config.Config{JWTSecret: testSecret}
	h := middleware.AuthJWT(cfg)(next)
	_ = h(c)
	return rec
}

func TestAuthJWT_NoCookie(t *testing.T) {
	rec := doRequest(nil, func(c echo.Context) error {
		t.Fatal("next should not be called")
		return nil
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_InvalidToken(t *testing.T) {
	cookie := &http.Cookie{Name: middleware.SessionCookieName, Value: "garbage"}
	rec := doRequest(cookie, func(c echo.Context) error {
		t.Fatal("next should not be called")
		return nil
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 秘密鍵が違うトークンは拒否
func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "1", "role": "customer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	cookie := &http.Cookie{Name: middleware.SessionCookieName, Value: token}
	rec := doRequest(cookie, func(c echo.Context) error { return nil })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "1", "role": "customer",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	cookie := &http.Cookie{Name: middleware.SessionCookieName, Value: token}
	rec := doRequest(cookie, func(c echo.Context) error { return nil })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 正常なトークンならclaimsがcontextに入る
func TestAuthJWT_SetsContextValues(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "42",
		"name":  "Taro",
		"email": "taro@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	cookie := &http.Cookie{Name: middleware.SessionCookieName, Value: token}

	called := false
	rec := doRequest(cookie, func(c echo.Context) error {
		called = true
		assert.Equal(t, int64(42), c.Get(middleware.CtxUserIDKey))
		assert.Equal(t, "Taro", c.Get(middleware.CtxUserNameKey))
		assert.Equal(t, "taro@example.com", c.Get(middleware.CtxUserEmailKey))
		assert.Equal(t, "admin", c.Get(middleware.CtxUserRoleKey))
		return c.NoContent(http.StatusOK)
	})

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard(t *testing.T) {
	e := echo.New()

	run := func(role interface{}) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set(middleware.CtxUserRoleKey, role)
		}
		h := middleware.AdminRoleGuard()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		_ = h(c)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, run(nil).Code)
	assert.Equal(t, http.StatusForbidden, run("customer").Code)
	assert.Equal(t, http.StatusOK, run("admin").Code)
}
