package model

import "time"

type CartStatus string

const (
	CartStatusActive CartStatus = "ACTIVE"
)

// 1ユーザーにつきACTIVEは1つ。(user_id, status)の一意制約で同時の初回作成も1つに潰す。
// 支払い確定時は明細だけを消して（クリア）、カート自体は残す。
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;uniqueIndex:uq_carts_user_status" json:"user_id"`
	Status    CartStatus `gorm:"type:varchar(20);not null;uniqueIndex:uq_carts_user_status" json:"status"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
