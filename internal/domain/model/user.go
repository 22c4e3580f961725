package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Googleログインのユーザーはパスワードを持たないので、PasswordHashは空でもよい
type User struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	PasswordHash string `gorm:"column:password_hash" json:"-"`

	Phone string `gorm:"type:varchar(30)" json:"phone"`
	Role  Role   `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	//支払い確定のたびに floor(合計/10) を加算する
	LoyaltyPoints int64 `gorm:"not null;default:0" json:"loyalty_points"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
