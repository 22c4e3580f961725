package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 10通貨単位ごとに1ポイント
const loyaltyPointsDivisor = 10

// Hosted Checkoutの1明細
type CheckoutItem struct {
	Name      string
	UnitPrice int64
	Quantity  int64
}

// ゲートウェイ側のセッション。
// Paid はゲートウェイへ問い合わせた結果であって、リダイレクトのクエリではない。
type CheckoutSession struct {
	ID     string
	URL    string
	Paid   bool
	UserID int64
}

// usecaseがゲートウェイに依存する約束。
// 実装は internal/infra/payment（Stripe）。
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, userID int64, items []CheckoutItem) (CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (CheckoutSession, error)
	ParseWebhookEvent(payload []byte, signature string) (CheckoutSession, bool, error)
}

type PaymentUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	gateway      PaymentGateway
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	gateway PaymentGateway,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		gateway:      gateway,
	}
}

type CheckoutSessionOutput struct {
	SessionID string `json:"id"`
	URL       string `json:"url"`
}

// 現在のACTIVEカートからHosted Checkoutのセッションを作る。
// 明細はカートのスナップショット価格で送る。
func (u *PaymentUsecase) CreateCheckoutSession(ctx context.Context, userID int64) (CheckoutSessionOutput, error) {
	if userID <= 0 {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	if err != nil {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cartItems, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(cartItems) == 0 {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	items := make([]CheckoutItem, 0, len(cartItems))
	for _, ci := range cartItems {
		name := ""
		if p, err := u.productRepo.FindByID(ctx, ci.ProductID); err == nil {
			name = p.Name
		}
		items = append(items, CheckoutItem{
			Name:      name,
			UnitPrice: ci.UnitPriceSnapshot,
			Quantity:  ci.Quantity,
		})
	}

	s, err := u.gateway.CreateCheckoutSession(ctx, userID, items)
	if err != nil {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	return CheckoutSessionOutput{SessionID: s.ID, URL: s.URL}, nil
}

// リダイレクトで戻ってきたクライアントからのsession_idを処理する。
// クエリは証明にならないので、必ずゲートウェイに取り直して支払い済みか確認する。
func (u *PaymentUsecase) FulfillCheckout(ctx context.Context, sessionID string) (OrderOutput, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session_id")
	}

	s, err := u.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}
	if !s.Paid {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "payment not completed")
	}
	if s.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid session")
	}

	return u.fulfill(ctx, s)
}

// 署名付きwebhook（checkout.session.completed）を処理する。
// 再送されても結果は変わらない。
func (u *PaymentUsecase) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error {
	s, ok, err := u.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		//署名が合わないものは受け付けない
		return NewHTTPError(http.StatusBadRequest, "invalid webhook signature")
	}
	if !ok {
		//対象外のイベントは何もしないで200を返させる
		return nil
	}
	if !s.Paid || s.UserID <= 0 {
		return nil
	}

	_, err = u.fulfill(ctx, s)
	return err
}

// 支払い確定の本体。session idをキーに1回だけ実行される。
//  1. 同じsession idの注文が既にあればそれを返して終わり（ポイントもカートも触らない）
//  2. カートを注文（PAID）にスナップショット
//  3. floor(合計/10) のポイントを加算
//  4. カートをクリア
//
// 全部1トランザクション。webhookとリダイレクトが同時に来ても注文は1件。
func (u *PaymentUsecase) fulfill(ctx context.Context, s CheckoutSession) (OrderOutput, error) {
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, s.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		cart, err := r.Carts().FindActiveByUserID(ctx, s.UserID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		orderItems, total, err := snapshotCartItems(ctx, r, cartItems)
		if err != nil {
			return err
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:         s.UserID,
			Status:         model.OrderStatusPending,
			PaymentStatus:  model.PaymentStatusPaid,
			TotalAmount:    total,
			IdempotencyKey: s.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			//webhookとリダイレクトの競合。先勝ちの結果を返す。
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, s.ID)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//ポイント加算（切り捨て）
		points := total / loyaltyPointsDivisor
		if points > 0 {
			if err := r.Users().AddLoyaltyPoints(ctx, s.UserID, points); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		//カートをクリア
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:            orderID,
			UserID:        s.UserID,
			Status:        model.OrderStatusPending,
			PaymentStatus: model.PaymentStatusPaid,
			TotalAmount:   total,
			CreatedAt:     now,
		}
		out = toOrderOutput(created, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
