package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	itemRepo  repo.OrderItemRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	itemRepo repo.OrderItemRepository,
	auditRepo repo.AuditLogRepository,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
	}
}

// 許される遷移だけを書く。載っていない遷移は全部エラー。
var orderStatusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusPreparing, model.OrderStatusCanceled},
	model.OrderStatusPreparing: {model.OrderStatusReady, model.OrderStatusCanceled},
	model.OrderStatusReady:     {model.OrderStatusCompleted},
}

func canTransition(from, to model.OrderStatus) bool {
	for _, s := range orderStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type AdminOrderListOutput struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (AdminOrderListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Status != "" && !model.OrderStatus(in.Status).Valid() {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Status: in.Status,
		UserID: in.UserID,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.itemRepo.ListByOrderID(ctx, o.ID)
		if err != nil {
			return AdminOrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}

	return AdminOrderListOutput{Orders: outs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *AdminOrderUsecase) GetDetail(ctx context.Context, orderID int64) (OrderOutput, error) {
	order, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	items, err := u.itemRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(order, items), nil
}

// ステータス遷移。同じ値への更新は何もしないで今の状態を返す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminID int64, orderID int64, next model.OrderStatus) (OrderOutput, error) {
	if !next.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if order.Status == next {
			out = toOrderOutput(order, items)
			return nil
		}
		if !canTransition(order.Status, next) {
			return NewHTTPError(http.StatusBadRequest, "invalid status transition")
		}

		before := order
		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		order.Status = next

		u.writeAudit(ctx, adminID, model.AuditActionUpdateOrderStatus, orderID, before, order)

		out = toOrderOutput(order, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

type AdminCreateOrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// 店頭注文（walk-in）。レジで会計済みならMarkPaid。
type AdminCreateOrderInput struct {
	UserID         int64                       `json:"user_id"`
	Items          []AdminCreateOrderItemInput `json:"items"`
	Note           string                      `json:"note"`
	MarkPaid       bool                        `json:"mark_paid"`
	IdempotencyKey string                      `json:"-"`
}

// 管理者が代理で注文を作る。明細は現在価格のスナップショット。
// ポイント加算はしない（決済ゲートウェイを通った注文だけが対象）。
func (u *AdminOrderUsecase) CreateOrder(ctx context.Context, adminID int64, in AdminCreateOrderInput) (OrderOutput, error) {
	if in.UserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "items is required")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, key)
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

		if _, err := r.Users().FindByID(ctx, in.UserID); err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "user not found")
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		var orderItems []model.OrderItem
		var total int64
		for _, it := range in.Items {
			if it.Quantity < 1 {
				return NewHTTPError(http.StatusBadRequest, "invalid quantity")
			}
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "product not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            it.Quantity,
			})
			total += p.Price * it.Quantity
		}

		payment := model.PaymentStatusPending
		if in.MarkPaid {
			payment = model.PaymentStatusPaid
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:         in.UserID,
			Status:         model.OrderStatusPending,
			PaymentStatus:  payment,
			TotalAmount:    total,
			IdempotencyKey: key,
			Note:           in.Note,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:            orderID,
			UserID:        in.UserID,
			Status:        model.OrderStatusPending,
			PaymentStatus: payment,
			TotalAmount:   total,
			Note:          in.Note,
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

func (u *AdminOrderUsecase) writeAudit(ctx context.Context, adminID int64, action model.AuditAction, resourceID int64, before, after any) {
	bj, _ := json.Marshal(before)
	aj, _ := json.Marshal(after)
	// 監査ログは本処理を止めない
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   resourceID,
		BeforeJSON:   string(bj),
		AfterJSON:    string(aj),
		CreatedAt:    time.Now(),
	})
}
