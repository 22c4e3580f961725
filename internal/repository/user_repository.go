package repository

import (
	"app/internal/domain/model"
	"context"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。見つからなければErrNotFound。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。見つからなければErrNotFound。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error

	//ポイント加算（支払い確定時のみ呼ぶ）
	AddLoyaltyPoints(ctx context.Context, userID int64, points int64) error

	//管理画面用
	ListCustomers(ctx context.Context) ([]model.User, error)
	CountCustomers(ctx context.Context) (int64, error)
	Delete(ctx context.Context, userID int64) error
}
