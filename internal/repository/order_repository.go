package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
)

// OrderFilter 后台订单列表的过滤条件
type OrderFilter struct {
	Status      string
	OrderType   string
	PaymentType string
	PaymentID   string
	IsPaid      *bool
	IsRefunded  *bool
	Date        *time.Time
	SortAsc     bool
}

// OrderRepository 订单仓储。创建只发生在结算事务内。
type OrderRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, order *model.Order) error
	GetByID(ctx context.Context, id uint) (*model.Order, error)
	LastByUser(ctx context.Context, userID uint) (*model.Order, error)
	// ListKitchen 厨房队列：cooking 状态，按支付时间排序
	ListKitchen(ctx context.Context) ([]*model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	// DeleteTx 在事务内删除订单（历史墓碑由调用方先行处理）
	DeleteTx(ctx context.Context, tx *gorm.DB, id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateTx(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Product").
		Preload("Products.Product.Ingredients").
		Preload("Products.Product.Ingredients.Ingredient").
		Preload("PromoUsage").
		Preload("PromoUsage.Promo").
		Preload("User").
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) LastByUser(ctx context.Context, userID uint) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ListKitchen(ctx context.Context) ([]*model.Order, error) {
	var rows []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Products.Product").
		Preload("Products.Product.Ingredients").
		Preload("Products.Product.Ingredients.Ingredient").
		Where("order_status = ?", model.OrderStatusCooking).
		Order("paid_at").
		Find(&rows).Error
	return rows, err
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]*model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Preload("User")
	if f.Status != "" {
		q = q.Where("order_status = ?", f.Status)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.PaymentType != "" {
		q = q.Where("payment_type = ?", f.PaymentType)
	}
	if f.PaymentID != "" {
		q = q.Where("payment_id LIKE ?", "%"+f.PaymentID+"%")
	}
	if f.IsPaid != nil {
		q = q.Where("is_paid = ?", *f.IsPaid)
	}
	if f.IsRefunded != nil {
		q = q.Where("is_refunded = ?", *f.IsRefunded)
	}
	if f.Date != nil {
		dayStart := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, f.Date.Location())
		q = q.Where("created_at >= ? AND created_at < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}
	if f.SortAsc {
		q = q.Order("created_at")
	} else {
		q = q.Order("created_at DESC")
	}

	var rows []*model.Order
	err := q.Find(&rows).Error
	return rows, err
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) DeleteTx(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := tx.WithContext(ctx).Where("order_id = ?", id).Delete(&model.OrderProduct{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Order{}, id).Error
}
