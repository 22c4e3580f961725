package model

import "time"

// レビューは注文明細（購入）単位で1件だけ。
// OrderItemIDのuniqueIndexで二重投稿をDBでも弾く。
type Rating struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	OrderItemID int64     `gorm:"not null;uniqueIndex" json:"order_item_id"`
	Score       int64     `gorm:"not null" json:"score"`
	Comment     string    `gorm:"type:varchar(255)" json:"comment"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
