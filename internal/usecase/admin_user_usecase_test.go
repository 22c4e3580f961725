package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
)

func newAdminUserUsecase() (*usecase.AdminUserUsecase, *UserRepoMock, *AuditRepoMock) {
	userRepo := new(UserRepoMock)
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewAdminUserUsecase(userRepo, auditRepo)
	return uc, userRepo, auditRepo
}

func TestAdminUserUsecase_SetActive_Deactivate(t *testing.T) {
	uc, userRepo, auditRepo := newAdminUserUsecase()

	userRepo.On("FindByID", mock.Anything, int64(2)).
		Return(&model.User{ID: 2, Name: "Taro", IsActive: true}, nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && !u.IsActive
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateUser && l.ResourceID == 2 && l.ActorUserID == 9
	})).Return(nil)

	out, err := uc.SetActive(context.Background(), 9, 2, false)
	assert.NoError(t, err)
	assert.False(t, out.IsActive)
	auditRepo.AssertExpectations(t)
}

// 居ないユーザーへの切り替えは404
func TestAdminUserUsecase_SetActive_UnknownUser(t *testing.T) {
	uc, userRepo, _ := newAdminUserUsecase()

	userRepo.On("FindByID", mock.Anything, int64(99)).
		Return(nil, repo.ErrNotFound)

	_, err := uc.SetActive(context.Background(), 9, 99, false)
	assertHTTPError(t, err, http.StatusNotFound, "user not found")
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// 管理者自身の無効化は弾く
func TestAdminUserUsecase_SetActive_SelfDeactivation(t *testing.T) {
	uc, userRepo, _ := newAdminUserUsecase()

	userRepo.On("FindByID", mock.Anything, int64(9)).
		Return(&model.User{ID: 9, IsActive: true}, nil)

	_, err := uc.SetActive(context.Background(), 9, 9, false)
	assertHTTPError(t, err, http.StatusBadRequest, "cannot deactivate yourself")
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// 一覧にパスワードハッシュが出ないこと（DTOにフィールド自体がない）
func TestAdminUserUsecase_ListCustomers(t *testing.T) {
	uc, userRepo, _ := newAdminUserUsecase()

	userRepo.On("ListCustomers", mock.Anything).
		Return([]model.User{
			{ID: 1, Name: "Taro", Email: "taro@example.com", PasswordHash: "secret", LoyaltyPoints: 13},
		}, nil)

	out, err := uc.ListCustomers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(13), out[0].LoyaltyPoints)
}

func TestAdminUserUsecase_DeleteUser_Self(t *testing.T) {
	uc, userRepo, _ := newAdminUserUsecase()

	userRepo.On("FindByID", mock.Anything, int64(9)).
		Return(&model.User{ID: 9}, nil)

	err := uc.DeleteUser(context.Background(), 9, 9)
	assertHTTPError(t, err, http.StatusBadRequest, "cannot delete yourself")
	userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
