package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminUserUsecase struct {
	userRepo  repo.UserRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminUserUsecase(userRepo repo.UserRepository, auditRepo repo.AuditLogRepository) *AdminUserUsecase {
	return &AdminUserUsecase{userRepo: userRepo, auditRepo: auditRepo}
}

type AdminUserOutput struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	IsActive      bool       `json:"is_active"`
	LoyaltyPoints int64      `json:"loyalty_points"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// 顧客一覧。パスワードハッシュは返さない。
func (u *AdminUserUsecase) ListCustomers(ctx context.Context) ([]AdminUserOutput, error) {
	users, err := u.userRepo.ListCustomers(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]AdminUserOutput, 0, len(users))
	for _, usr := range users {
		outs = append(outs, toAdminUserOutput(usr))
	}
	return outs, nil
}

// 有効/無効の切り替え。無効にされたユーザーはログインできなくなる。
func (u *AdminUserUsecase) SetActive(ctx context.Context, adminID int64, userID int64, active bool) (AdminUserOutput, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return AdminUserOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 管理者自身の無効化は事故のもとなので弾く
	if user.ID == adminID && !active {
		return AdminUserOutput{}, NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	before := *user
	user.IsActive = active
	user.UpdatedAt = time.Now()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, adminID, user.ID, toAdminUserOutput(before), toAdminUserOutput(*user))

	return toAdminUserOutput(*user), nil
}

func (u *AdminUserUsecase) DeleteUser(ctx context.Context, adminID int64, userID int64) error {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user.ID == adminID {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}

	if err := u.userRepo.Delete(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, adminID, userID, toAdminUserOutput(*user), nil)
	return nil
}

type AuditLogListOutput struct {
	Logs  []model.AuditLog `json:"logs"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// 管理者操作の履歴
func (u *AdminUserUsecase) ListAuditLogs(ctx context.Context, page int, limit int) (AuditLogListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	logs, total, err := u.auditRepo.List(ctx, page, limit)
	if err != nil {
		return AuditLogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AuditLogListOutput{Logs: logs, Total: total, Page: page, Limit: limit}, nil
}

func (u *AdminUserUsecase) writeAudit(ctx context.Context, adminID int64, userID int64, before, after any) {
	bj, _ := json.Marshal(before)
	aj, _ := json.Marshal(after)
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   string(bj),
		AfterJSON:    string(aj),
		CreatedAt:    time.Now(),
	})
}

func toAdminUserOutput(u model.User) AdminUserOutput {
	return AdminUserOutput{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		IsActive:      u.IsActive,
		LoyaltyPoints: u.LoyaltyPoints,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}
