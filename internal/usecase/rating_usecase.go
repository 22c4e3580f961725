package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type RatingUsecase struct {
	tx repo.TransactionManager
}

func NewRatingUsecase(tx repo.TransactionManager) *RatingUsecase {
	return &RatingUsecase{tx: tx}
}

type AddRatingInput struct {
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	Score     int64  `json:"score"`
	Comment   string `json:"comment"`
}

type RatingOutput struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Score     int64     `json:"score"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// 支払い済み注文の明細に対してだけ評価できる。1明細1回まで。
// 評価を書いたら商品の平均を取り直す。
func (u *RatingUsecase) AddRating(ctx context.Context, userID int64, in AddRatingInput) (RatingOutput, error) {
	if in.Score < 1 || in.Score > 5 {
		return RatingOutput{}, NewHTTPError(http.StatusBadRequest, "score must be between 1 and 5")
	}
	in.Comment = strings.TrimSpace(in.Comment)

	var out RatingOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, in.OrderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		// 他人の注文は存在しない扱い
		if order.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if order.PaymentStatus != model.PaymentStatusPaid {
			return NewHTTPError(http.StatusBadRequest, "order not paid")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		var target *model.OrderItem
		for i := range items {
			if items[i].ProductID == in.ProductID {
				target = &items[i]
				break
			}
		}
		if target == nil {
			return NewHTTPError(http.StatusBadRequest, "product not in order")
		}
		if target.IsRated {
			return NewHTTPError(http.StatusBadRequest, "already rated")
		}
		exists, err := r.Ratings().ExistsByOrderItemID(ctx, target.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return NewHTTPError(http.StatusBadRequest, "already rated")
		}

		rating := model.Rating{
			UserID:      userID,
			ProductID:   in.ProductID,
			OrderItemID: target.ID,
			Score:       in.Score,
			Comment:     in.Comment,
			CreatedAt:   time.Now(),
		}
		created, err := r.Ratings().Create(ctx, rating)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().MarkRated(ctx, target.ID, in.Score); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 平均を取り直して商品に反映
		all, err := r.Ratings().ListByProductID(ctx, in.ProductID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		var sum int64
		for _, rt := range all {
			sum += rt.Score
		}
		avg := 0.0
		if len(all) > 0 {
			avg = float64(sum) / float64(len(all))
		}
		if err := r.Products().UpdateRatingAggregate(ctx, in.ProductID, avg, int64(len(all))); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = RatingOutput{
			ID:        created.ID,
			ProductID: created.ProductID,
			Score:     created.Score,
			Comment:   created.Comment,
			CreatedAt: created.CreatedAt,
		}
		return nil
	})

	if err != nil {
		return RatingOutput{}, err
	}
	return out, nil
}

// 商品の評価一覧（公開）
func (u *RatingUsecase) ListProductRatings(ctx context.Context, productID int64) ([]RatingOutput, error) {
	var outs []RatingOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, productID); err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		ratings, err := r.Ratings().ListByProductID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = make([]RatingOutput, 0, len(ratings))
		for _, rt := range ratings {
			outs = append(outs, RatingOutput{
				ID:        rt.ID,
				ProductID: rt.ProductID,
				Score:     rt.Score,
				Comment:   rt.Comment,
				CreatedAt: rt.CreatedAt,
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return outs, nil
}
