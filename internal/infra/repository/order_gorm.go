package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var orders []model.Order
	offset := (page - 1) * limit
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return orders, total, nil
}

// 一意制約（idempotency_key）違反で外側のトランザクションまで壊れないよう、
// INSERTはネストしたTransaction（SAVEPOINT）で切る。
// 負けた側はロールバック後も同じトランザクション内で勝者を再検索できる。
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// キー（checkout session id等）で1件検索。
// webhook再送・リダイレクト二重呼び出しの検知に使う。
func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, key string) (model.Order, bool, error) {
	var o model.Order

	err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

// 管理者用の注文一覧
func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// 支払い済み注文の売上合計
func (r *OrderGormRepository) SumPaidTotalAmount(ctx context.Context) (int64, error) {
	var sum *int64

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentStatusPaid).
		Select("SUM(total_amount)").
		Scan(&sum).Error

	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// 支払い済み注文の件数
func (r *OrderGormRepository) CountPaidOrders(ctx context.Context) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentStatusPaid).
		Count(&count).Error

	if err != nil {
		return 0, err
	}
	return count, nil
}

// 売れ筋（数量順）。名前と売上はスナップショットから集計する。
func (r *OrderGormRepository) TopItems(ctx context.Context, limit int) ([]repo.TopItemRow, error) {
	if limit <= 0 {
		limit = 4
	}

	var rows []repo.TopItemRow

	err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("join orders on orders.id = order_items.order_id").
		Where("orders.payment_status = ?", model.PaymentStatusPaid).
		Select("order_items.product_id as product_id, " +
			"MAX(order_items.product_name_snapshot) as name, " +
			"SUM(order_items.quantity) as quantity, " +
			"SUM(order_items.quantity * order_items.unit_price_snapshot) as revenue").
		Group("order_items.product_id").
		Order("quantity desc").
		Limit(limit).
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}
	return rows, nil
}
