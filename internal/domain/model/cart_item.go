package model

import "time"

// カートの明細。同一商品は1行で、同時追加は(cart_id, product_id)の一意制約で1行に潰す。
// 追加時点の価格を必ず保存（あとで商品価格が変わってもカート内は変えない）。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;uniqueIndex:uq_cart_items_cart_product" json:"cart_id"`
	ProductID         int64     `gorm:"not null;uniqueIndex:uq_cart_items_cart_product" json:"product_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
