package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	"app/internal/usecase"
)

func newPaymentUsecase() (*usecase.PaymentUsecase, orderTestMocks, *GatewayMock) {
	tx, m := newTxMocks()
	gw := new(GatewayMock)
	uc := usecase.NewPaymentUsecase(tx, m.carts, m.cartItems, m.products, gw)
	return uc, m, gw
}

func TestPaymentUsecase_CreateCheckoutSession_EmptyCart(t *testing.T) {
	uc, m, _ := newPaymentUsecase()

	m.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{}, nil)

	_, err := uc.CreateCheckoutSession(context.Background(), 1)
	assertHTTPError(t, err, http.StatusBadRequest, "cart empty")
}

func TestPaymentUsecase_CreateCheckoutSession_GatewayError(t *testing.T) {
	uc, m, gw := newPaymentUsecase()

	m.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{
			{ID: 1, ProductID: 5, Quantity: 2, UnitPriceSnapshot: 50},
		}, nil)
	m.products.On("FindByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, Name: "ラテ"}, nil)
	gw.On("CreateCheckoutSession", mock.Anything, int64(1), mock.Anything).
		Return(usecase.CheckoutSession{}, errors.New("stripe down"))

	_, err := uc.CreateCheckoutSession(context.Background(), 1)
	assertHTTPError(t, err, http.StatusBadGateway, "payment gateway error")
}

// 明細はスナップショット価格でゲートウェイに渡る
func TestPaymentUsecase_CreateCheckoutSession_UsesSnapshotPrices(t *testing.T) {
	uc, m, gw := newPaymentUsecase()

	m.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{
			{ID: 1, ProductID: 5, Quantity: 2, UnitPriceSnapshot: 50},
			{ID: 2, ProductID: 6, Quantity: 1, UnitPriceSnapshot: 30},
		}, nil)
	m.products.On("FindByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, Name: "ラテ", Price: 999}, nil)
	m.products.On("FindByID", mock.Anything, int64(6)).
		Return(model.Product{ID: 6, Name: "スコーン", Price: 999}, nil)
	gw.On("CreateCheckoutSession", mock.Anything, int64(1), mock.MatchedBy(func(items []usecase.CheckoutItem) bool {
		return len(items) == 2 &&
			items[0].UnitPrice == 50 && items[0].Quantity == 2 &&
			items[1].UnitPrice == 30 && items[1].Quantity == 1
	})).Return(usecase.CheckoutSession{ID: "cs_123", URL: "https://pay.example/cs_123"}, nil)

	out, err := uc.CreateCheckoutSession(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "cs_123", out.SessionID)
	gw.AssertExpectations(t)
}

// リダイレクトのsession_idは信用せず、ゲートウェイ照会で未払いなら拒否
func TestPaymentUsecase_FulfillCheckout_UnpaidSession(t *testing.T) {
	uc, _, gw := newPaymentUsecase()

	gw.On("RetrieveSession", mock.Anything, "cs_123").
		Return(usecase.CheckoutSession{ID: "cs_123", Paid: false, UserID: 1}, nil)

	_, err := uc.FulfillCheckout(context.Background(), "cs_123")
	assertHTTPError(t, err, http.StatusBadRequest, "payment not completed")
}

// 合計130の支払いで13ポイント付与（floor(合計/10)）
func TestPaymentUsecase_FulfillCheckout_AwardsLoyaltyPoints(t *testing.T) {
	uc, m, gw := newPaymentUsecase()

	gw.On("RetrieveSession", mock.Anything, "cs_123").
		Return(usecase.CheckoutSession{ID: "cs_123", Paid: true, UserID: 1}, nil)
	m.orders.On("FindByIdempotencyKey", mock.Anything, "cs_123").
		Return(model.Order{}, false, nil)
	m.carts.On("FindActiveByUserID", mock.Anything, int64(1)).
		Return(model.Cart{ID: 10}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(10)).
		Return([]model.CartItem{
			{ID: 1, ProductID: 5, Quantity: 2, UnitPriceSnapshot: 50},
			{ID: 2, ProductID: 6, Quantity: 1, UnitPriceSnapshot: 30},
		}, nil)
	m.products.On("FindByID", mock.Anything, int64(5)).
		Return(model.Product{ID: 5, Name: "ラテ", IsAvailable: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(6)).
		Return(model.Product{ID: 6, Name: "スコーン", IsAvailable: true}, nil)
	m.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalAmount == 130 &&
			o.PaymentStatus == model.PaymentStatusPaid &&
			o.IdempotencyKey == "cs_123"
	})).Return(int64(100), nil)
	m.orderItems.On("CreateBulk", mock.Anything, int64(100), mock.Anything).
		Return(nil)
	m.users.On("AddLoyaltyPoints", mock.Anything, int64(1), int64(13)).
		Return(nil)
	m.carts.On("Clear", mock.Anything, int64(10)).
		Return(nil)

	out, err := uc.FulfillCheckout(context.Background(), "cs_123")
	assert.NoError(t, err)
	assert.Equal(t, "PAID", out.PaymentStatus)
	assert.Equal(t, int64(130), out.TotalAmount)

	m.users.AssertCalled(t, "AddLoyaltyPoints", mock.Anything, int64(1), int64(13))
	m.carts.AssertCalled(t, "Clear", mock.Anything, int64(10))
}

// 同じセッションの再処理（webhook再送・リロード）ではポイントを二重加算しない
func TestPaymentUsecase_FulfillCheckout_ReplayDoesNotDoubleAward(t *testing.T) {
	uc, m, gw := newPaymentUsecase()

	gw.On("RetrieveSession", mock.Anything, "cs_123").
		Return(usecase.CheckoutSession{ID: "cs_123", Paid: true, UserID: 1}, nil)
	existing := model.Order{
		ID: 100, UserID: 1,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPaid,
		TotalAmount:   130,
	}
	m.orders.On("FindByIdempotencyKey", mock.Anything, "cs_123").
		Return(existing, true, nil)
	m.orderItems.On("ListByOrderID", mock.Anything, int64(100)).
		Return([]model.OrderItem{}, nil)

	out, err := uc.FulfillCheckout(context.Background(), "cs_123")
	assert.NoError(t, err)
	assert.Equal(t, int64(100), out.ID)

	m.users.AssertNotCalled(t, "AddLoyaltyPoints", mock.Anything, mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPaymentUsecase_HandleWebhookEvent_InvalidSignature(t *testing.T) {
	uc, _, gw := newPaymentUsecase()

	gw.On("ParseWebhookEvent", mock.Anything, "bad-sig").
		Return(usecase.CheckoutSession{}, false, errors.New("signature mismatch"))

	err := uc.HandleWebhookEvent(context.Background(), []byte("{}"), "bad-sig")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid webhook signature")
}

// 対象外イベントは何もしないで成功扱い
func TestPaymentUsecase_HandleWebhookEvent_IgnoresOtherEvents(t *testing.T) {
	uc, m, gw := newPaymentUsecase()

	gw.On("ParseWebhookEvent", mock.Anything, "sig").
		Return(usecase.CheckoutSession{}, false, nil)

	err := uc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	assert.NoError(t, err)
	m.orders.AssertNotCalled(t, "FindByIdempotencyKey", mock.Anything, mock.Anything)
}
