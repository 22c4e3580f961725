package model

import "time"

// 調理側のステータス
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// 決済側のステータス（ゲートウェイが確定させる）
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// IdempotencyKeyにはStripeのcheckout session id、
// または（ゲートウェイを通らない注文では）クライアントの二重送信防止キーが入る。
// 同じキーの注文は2件作れない。
type Order struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64         `gorm:"not null;index" json:"user_id"`
	Status         OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus  PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	TotalAmount    int64         `gorm:"not null" json:"total_amount"`
	IdempotencyKey string        `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	Note           string        `gorm:"type:varchar(500)" json:"note"`
	CreatedAt      time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
