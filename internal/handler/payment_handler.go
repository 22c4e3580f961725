package handler

import (
	"io"
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /paymentのHTTP。webhookだけ認証なし（Stripe署名で検証する）。
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

// DI
func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type FulfillRequest struct {
	SessionID string `json:"session_id"`
}

// /payment を登録
func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	// 署名検証があるので認証ミドルウェアは通さない
	e.POST("/payment/webhook", h.webhook)

	g := e.Group("/payment")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/checkout-session", h.createCheckoutSession)
	g.POST("/fulfill", h.fulfill)
}

func (h *PaymentHandler) createCheckoutSession(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.CreateCheckoutSession(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 決済完了画面から戻ってきたクライアントが叩く。
// session_idはゲートウェイに照会するだけで、ここでは信用しない。
func (h *PaymentHandler) fulfill(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req FulfillRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.FulfillCheckout(c.Request().Context(), req.SessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// Stripeからのwebhook。bodyは生のまま署名検証に渡す。
func (h *PaymentHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.uc.HandleWebhookEvent(c.Request().Context(), payload, signature); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"received": "true"})
}
