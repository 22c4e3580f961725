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

func newProductUsecase() (*usecase.ProductUsecase, *ProductRepoMock, *AuditRepoMock) {
	productRepo := new(ProductRepoMock)
	auditRepo := new(AuditRepoMock)
	uc := usecase.NewProductUsecase(productRepo, auditRepo)
	return uc, productRepo, auditRepo
}

func TestProductUsecase_ListAvailableProducts_InvalidPage(t *testing.T) {
	uc, _, _ := newProductUsecase()

	_, err := uc.ListAvailableProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid page")
}

func TestProductUsecase_ListAvailableProducts_InvalidCategory(t *testing.T) {
	uc, _, _ := newProductUsecase()

	_, err := uc.ListAvailableProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Category: "ramen"})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid category")
}

func TestProductUsecase_ListAvailableProducts_InvalidSort(t *testing.T) {
	uc, _, _ := newProductUsecase()

	_, err := uc.ListAvailableProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 20, Sort: "oldest"})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid sort")
}

func TestProductUsecase_ListAvailableProducts_OK(t *testing.T) {
	uc, productRepo, _ := newProductUsecase()

	productRepo.On("ListAvailable", mock.Anything, repo.ProductListQuery{
		Page: 1, Limit: 20, Category: "coffee", Sort: "rating",
	}).Return([]model.Product{{ID: 1, Name: "ラテ"}}, int64(1), nil)

	out, err := uc.ListAvailableProducts(context.Background(), usecase.ListProductsInput{
		Page: 1, Limit: 20, Category: "coffee", Sort: "rating",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Items, 1)
}

// 提供停止中の商品は公開側では404
func TestProductUsecase_GetProductDetail_UnavailableHidden(t *testing.T) {
	uc, productRepo, _ := newProductUsecase()

	productRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, Name: "ラテ", IsAvailable: false}, nil)

	_, err := uc.GetProductDetail(context.Background(), 5)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
}

func TestProductUsecase_AdminCreateProduct_Validation(t *testing.T) {
	uc, _, _ := newProductUsecase()

	_, err := uc.AdminCreateProduct(context.Background(), 9, usecase.AdminSaveProductInput{
		Name: "", Category: "coffee", Price: 50,
	})
	assertHTTPError(t, err, http.StatusBadRequest, "name is required")

	_, err = uc.AdminCreateProduct(context.Background(), 9, usecase.AdminSaveProductInput{
		Name: "ラテ", Category: "ramen", Price: 50,
	})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid category")

	_, err = uc.AdminCreateProduct(context.Background(), 9, usecase.AdminSaveProductInput{
		Name: "ラテ", Category: "coffee", Price: -1,
	})
	assertHTTPError(t, err, http.StatusBadRequest, "price must be >= 0")
}

// 作成で監査ログ（UPDATE_PRODUCT）が書かれる
func TestProductUsecase_AdminCreateProduct_WritesAudit(t *testing.T) {
	uc, productRepo, auditRepo := newProductUsecase()

	productRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "ラテ" && p.Category == model.CategoryCoffee && p.CreatedByUserID == 9
	})).Return(model.Product{ID: 5, Name: "ラテ", Category: model.CategoryCoffee}, nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateProduct && l.ActorUserID == 9 && l.ResourceID == 5
	})).Return(nil)

	created, err := uc.AdminCreateProduct(context.Background(), 9, usecase.AdminSaveProductInput{
		Name: "ラテ", Category: "coffee", Price: 50, IsAvailable: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	auditRepo.AssertExpectations(t)
}

func TestProductUsecase_AdminDeleteProduct_NotFound(t *testing.T) {
	uc, productRepo, _ := newProductUsecase()

	productRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Product{}, repo.ErrNotFound)

	err := uc.AdminDeleteProduct(context.Background(), 9, 5)
	assertHTTPError(t, err, http.StatusNotFound, "not found")
}
