package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// レビューのHTTP
type RatingHandler struct {
	uc *usecase.RatingUsecase
}

// DI
func NewRatingHandler(uc *usecase.RatingUsecase) *RatingHandler {
	return &RatingHandler{uc: uc}
}

type AddRatingRequest struct {
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Score     int64  `json:"score"`
	Comment   string `json:"comment"`
}

// 投稿は認証あり、一覧は公開
func (h *RatingHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/products/:id/ratings", h.listProductRatings)

	g := e.Group("/ratings")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("", h.addRating)
}

func (h *RatingHandler) addRating(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddRatingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddRating(c.Request().Context(), userID, usecase.AddRatingInput{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Score:     req.Score,
		Comment:   req.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *RatingHandler) listProductRatings(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.ListProductRatings(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
