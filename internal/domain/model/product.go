package model

import (
	"time"

	"gorm.io/gorm"
)

// メニューのカテゴリ
type Category string

const (
	CategoryCoffee  Category = "coffee"
	CategoryTea     Category = "tea"
	CategoryFood    Category = "food"
	CategoryDessert Category = "dessert"
	CategoryPastry  Category = "pastry"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCoffee, CategoryTea, CategoryFood, CategoryDessert, CategoryPastry:
		return true
	}
	return false
}

// AverageRating / NumReviews はレビュー登録のたびに再計算する派生値
type Product struct {
	ID          int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Description string   `gorm:"type:varchar(500)" json:"description"`
	Category    Category `gorm:"type:varchar(20);not null;index" json:"category"`
	Price       int64    `gorm:"not null" json:"price"`
	IsAvailable bool     `gorm:"not null;default:true" json:"is_available"`

	AverageRating float64 `gorm:"not null;default:0" json:"average_rating"`
	NumReviews    int64   `gorm:"not null;default:0" json:"num_reviews"`

	CreatedByUserID int64 `gorm:"not null" json:"created_by_user_id"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
