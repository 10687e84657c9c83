package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
)

// HistoryRepository 订单审计，只增
type HistoryRepository interface {
	AppendTx(ctx context.Context, tx *gorm.DB, h *model.OrderHistory) error
	// TombstoneTx 删除订单前调用：历史行打墓碑并解除外键
	TombstoneTx(ctx context.Context, tx *gorm.DB, orderID uint) error
	ListByOrder(ctx context.Context, orderID uint) ([]*model.OrderHistory, error)
	ListByDeletedOrder(ctx context.Context, deletedOrderID uint) ([]*model.OrderHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) AppendTx(ctx context.Context, tx *gorm.DB, h *model.OrderHistory) error {
	return tx.WithContext(ctx).Create(h).Error
}

func (r *historyRepository) TombstoneTx(ctx context.Context, tx *gorm.DB, orderID uint) error {
	return tx.WithContext(ctx).
		Model(&model.OrderHistory{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"deleted_order_id": orderID,
			"order_id":         nil,
		}).Error
}

func (r *historyRepository) ListByOrder(ctx context.Context, orderID uint) ([]*model.OrderHistory, error) {
	var rows []*model.OrderHistory
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at").Find(&rows).Error
	return rows, err
}

func (r *historyRepository) ListByDeletedOrder(ctx context.Context, deletedOrderID uint) ([]*model.OrderHistory, error) {
	var rows []*model.OrderHistory
	err := r.db.WithContext(ctx).Where("deleted_order_id = ?", deletedOrderID).Order("created_at").Find(&rows).Error
	return rows, err
}
