package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/0xDyno/healthy-blend/internal/model"
)

// PromoRepository 促销码仓储。GetForUpdate/IncrementUsage 只在结算事务内使用。
type PromoRepository interface {
	// GetActiveByCode 顾问式查询：当前可兑换的促销码，不加锁不预占
	GetActiveByCode(ctx context.Context, code string, now time.Time) (*model.Promo, error)
	// GetForUpdate 行级排它锁读取，串行化同一促销码的并发兑换
	GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Promo, error)
	// CreateUsageTx 在事务内写入兑换记录并递增 used_count
	CreateUsageTx(ctx context.Context, tx *gorm.DB, usage *model.PromoUsage) error
	GetByID(ctx context.Context, id uint) (*model.Promo, error)
	List(ctx context.Context) ([]*model.Promo, error)
	Create(ctx context.Context, promo *model.Promo) error
	Update(ctx context.Context, promo *model.Promo) error
}

type promoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) PromoRepository {
	return &promoRepository{db: db}
}

func (r *promoRepository) GetActiveByCode(ctx context.Context, code string, now time.Time) (*model.Promo, error) {
	var p model.Promo
	err := r.db.WithContext(ctx).
		Where("promo_code = ? AND is_enabled = ? AND is_finished = ?", code, true, false).
		Where("active_from <= ? AND active_until >= ?", now, now).
		Where("used_count < usage_limit").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promoRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Promo, error) {
	q := tx.WithContext(ctx)
	// sqlite 不解析 FOR UPDATE，测试环境跳过；单写者下语义不变
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p model.Promo
	if err := q.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promoRepository) CreateUsageTx(ctx context.Context, tx *gorm.DB, usage *model.PromoUsage) error {
	if err := tx.WithContext(ctx).Create(usage).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).
		Model(&model.Promo{}).
		Where("id = ?", usage.PromoID).
		Update("used_count", gorm.Expr("used_count + 1")).Error
}

func (r *promoRepository) GetByID(ctx context.Context, id uint) (*model.Promo, error) {
	var p model.Promo
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promoRepository) List(ctx context.Context) ([]*model.Promo, error) {
	var promos []*model.Promo
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promoRepository) Create(ctx context.Context, promo *model.Promo) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *promoRepository) Update(ctx context.Context, promo *model.Promo) error {
	return r.db.WithContext(ctx).Save(promo).Error
}
