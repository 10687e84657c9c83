package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

// OrderUpdate 后台/厨房对订单的一次修改。nil 字段表示不变。
type OrderUpdate struct {
	OrderStatus *string
	OrderType   *string
	PaymentType *string
	PaymentID   *string
	IsPaid      *bool
	IsRefunded  *bool
	PrivateNote *string
}

// OrderService 订单创建之后的生命周期：状态流转、查询、删除。
// 每次修改都重新过订单不变量并追加审计快照。
type OrderService struct {
	db       *gorm.DB
	orders   repository.OrderRepository
	history  repository.HistoryRepository
	settings repository.SettingRepository
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, orders repository.OrderRepository,
	history repository.HistoryRepository, settings repository.SettingRepository,
	now func() time.Time) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{db: db, orders: orders, history: history, settings: settings, now: now}
}

// Get 订单详情
func (s *OrderService) Get(ctx context.Context, id uint) (*model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// Last 用户最近一单
func (s *OrderService) Last(ctx context.Context, userID uint) (*model.Order, error) {
	return s.orders.LastByUser(ctx, userID)
}

// Kitchen 厨房队列
func (s *OrderService) Kitchen(ctx context.Context) ([]*model.Order, error) {
	return s.orders.ListKitchen(ctx)
}

// List 按条件过滤订单
func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]*model.Order, error) {
	return s.orders.List(ctx, f)
}

// MarkReady 厨房完成出餐
func (s *OrderService) MarkReady(ctx context.Context, orderID, editorID uint) error {
	status := model.OrderStatusReady
	return s.Update(ctx, orderID, editorID, OrderUpdate{OrderStatus: &status})
}

// Update 应用一次修改：校验可编辑窗口与不变量，落库并追加审计
func (s *OrderService) Update(ctx context.Context, orderID, editorID uint, upd OrderUpdate) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	editable, err := s.CanEdit(ctx, order)
	if err != nil {
		return err
	}
	if !editable {
		return Invalid("This order can no longer be edited as it was placed over a day ago.")
	}

	apply(order, upd)
	order.UserLastUpdateID = &editorID

	now := s.now()
	if order.IsPaid && order.PaidAt == nil {
		order.PaidAt = &now
		// 现金收款没有外部支付网关的流水号，生成一个内部凭据号
		if order.PaymentType == model.PaymentTypeCash && order.PaymentID == "" {
			order.PaymentID = "cash-" + uuid.NewString()[:8]
		}
	}
	if order.OrderStatus == model.OrderStatusReady && order.ReadyAt == nil {
		order.ReadyAt = &now
	}
	if order.IsRefunded && order.RefundedAt == nil {
		order.RefundedAt = &now
	}

	if err := order.Validate(); err != nil {
		return Invalid("%s", err.Error())
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products", "PromoUsage", "User").Save(order).Error; err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		return s.history.AppendTx(ctx, tx, model.SnapshotOrder(order, &editorID))
	})
}

func apply(order *model.Order, upd OrderUpdate) {
	if upd.OrderStatus != nil {
		order.OrderStatus = *upd.OrderStatus
	}
	if upd.OrderType != nil {
		order.OrderType = *upd.OrderType
	}
	if upd.PaymentType != nil {
		order.PaymentType = *upd.PaymentType
	}
	if upd.PaymentID != nil {
		order.PaymentID = *upd.PaymentID
	}
	if upd.IsPaid != nil {
		order.IsPaid = *upd.IsPaid
	}
	if upd.IsRefunded != nil {
		order.IsRefunded = *upd.IsRefunded
	}
	if upd.PrivateNote != nil {
		order.PrivateNote = *upd.PrivateNote
	}
}

// CanEdit 订单只在下单当天的营业时间内可编辑
func (s *OrderService) CanEdit(ctx context.Context, order *model.Order) (bool, error) {
	now := s.now()

	day, err := s.settings.GetDay(ctx, model.Weekday(now))
	if err != nil {
		return false, err
	}
	if !day.IsOpen {
		return false, nil
	}

	open, close, err := day.Window(now)
	if err != nil {
		return false, err
	}
	if now.Before(open) || now.After(close) {
		return false, nil
	}

	y1, m1, d1 := order.CreatedAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2, nil
}

// Delete 删除订单。审计历史不级联删除：先打墓碑、解除外键，再删订单。
func (s *OrderService) Delete(ctx context.Context, orderID uint) error {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.history.TombstoneTx(ctx, tx, orderID); err != nil {
			return fmt.Errorf("tombstone history: %w", err)
		}
		return s.orders.DeleteTx(ctx, tx, orderID)
	})
}
