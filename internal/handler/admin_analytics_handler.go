package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/analytics のHTTP
type AdminAnalyticsHandler struct {
	uc *usecase.AdminAnalyticsUsecase
}

// DI
func NewAdminAnalyticsHandler(uc *usecase.AdminAnalyticsUsecase) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{uc: uc}
}

// admin分析を登録
func (h *AdminAnalyticsHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")

	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/analytics/revenue", h.revenue)
	admin.GET("/analytics/top-items", h.topItems)
}

func (h *AdminAnalyticsHandler) revenue(c echo.Context) error {
	out, err := h.uc.Revenue(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminAnalyticsHandler) topItems(c echo.Context) error {
	out, err := h.uc.TopItems(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
