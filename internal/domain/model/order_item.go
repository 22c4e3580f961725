package model

import "time"

// 注文明細。商品名と価格は注文時点の値で固定する。
// IsRated / Rating は「この購入に対するレビュー」を1回だけ受け付けるための印。
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	IsRated             bool      `gorm:"not null;default:false" json:"is_rated"`
	Rating              int64     `gorm:"not null;default:0" json:"rating"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
