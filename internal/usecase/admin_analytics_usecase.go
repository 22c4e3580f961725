package usecase

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	repo "app/internal/repository"
)

const topItemsLimit = 4

type AdminAnalyticsUsecase struct {
	orderRepo repo.OrderRepository
	userRepo  repo.UserRepository
}

func NewAdminAnalyticsUsecase(orderRepo repo.OrderRepository, userRepo repo.UserRepository) *AdminAnalyticsUsecase {
	return &AdminAnalyticsUsecase{orderRepo: orderRepo, userRepo: userRepo}
}

// AverageOrderValueは小数2桁で丸めた文字列（例 "12.50"）。
// floatの丸め誤差を金額に持ち込まない。
type RevenueOutput struct {
	TotalRevenue      int64  `json:"total_revenue"`
	PaidOrderCount    int64  `json:"paid_order_count"`
	CustomerCount     int64  `json:"customer_count"`
	AverageOrderValue string `json:"average_order_value"`
}

// 売上サマリ。集計はPAIDの注文だけが対象。
func (u *AdminAnalyticsUsecase) Revenue(ctx context.Context) (RevenueOutput, error) {
	revenue, err := u.orderRepo.SumPaidTotalAmount(ctx)
	if err != nil {
		return RevenueOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	orders, err := u.orderRepo.CountPaidOrders(ctx)
	if err != nil {
		return RevenueOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	customers, err := u.userRepo.CountCustomers(ctx)
	if err != nil {
		return RevenueOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	avg := "0.00"
	if orders > 0 {
		avg = decimal.NewFromInt(revenue).
			Div(decimal.NewFromInt(orders)).
			Round(2).
			StringFixed(2)
	}

	return RevenueOutput{
		TotalRevenue:      revenue,
		PaidOrderCount:    orders,
		CustomerCount:     customers,
		AverageOrderValue: avg,
	}, nil
}

// 数量ベースの売れ筋上位
func (u *AdminAnalyticsUsecase) TopItems(ctx context.Context) ([]repo.TopItemRow, error) {
	rows, err := u.orderRepo.TopItems(ctx, topItemsLimit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rows, nil
}
