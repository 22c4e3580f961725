package repository

import (
	"context"

	"app/internal/domain/model"
)

type RatingRepository interface {
	Create(ctx context.Context, r model.Rating) (model.Rating, error)
	ExistsByOrderItemID(ctx context.Context, orderItemID int64) (bool, error)
	//集計の元データ（その商品の全レビュー）
	ListByProductID(ctx context.Context, productID int64) ([]model.Rating, error)
}
