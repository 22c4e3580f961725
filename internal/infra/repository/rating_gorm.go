package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ratingGormRepository struct {
	db *gorm.DB
}

// DI
func NewRatingGormRepository(db *gorm.DB) repo.RatingRepository {
	return &ratingGormRepository{db: db}
}

func (r *ratingGormRepository) Create(ctx context.Context, rating model.Rating) (model.Rating, error) {
	if err := r.db.WithContext(ctx).Create(&rating).Error; err != nil {
		return model.Rating{}, err
	}
	return rating, nil
}

// その注文明細のレビューが既にあるか
func (r *ratingGormRepository) ExistsByOrderItemID(ctx context.Context, orderItemID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Where("order_item_id = ?", orderItemID).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// 商品の全レビュー（平均の再計算に使う）
func (r *ratingGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.Rating, error) {
	var ratings []model.Rating

	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&ratings).Error

	if err != nil {
		return []model.Rating{}, err
	}
	return ratings, nil
}
