package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
)

// ProductRepository 商品仓储。变体/自选商品的创建发生在结算事务里，
// 相应方法接收事务句柄而不是内部的 db。
type ProductRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	ListMenu(ctx context.Context) ([]*model.Product, error)
	ListAll(ctx context.Context) ([]*model.Product, error)
	// FindVariant 按 (父商品, 目标卡路里) 查找已存在的变体
	FindVariant(ctx context.Context, tx *gorm.DB, parentID uint, calories int) (*model.Product, error)
	// CreateTx 在事务内创建商品（含配料关联）
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Product) error
	Save(ctx context.Context, p *model.Product) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListMenu(ctx context.Context) ([]*model.Product, error) {
	var rows []*model.Product
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Where("is_menu = ? AND is_enabled = ?", true, true).
		Order("name").
		Find(&rows).Error
	return rows, err
}

func (r *productRepository) ListAll(ctx context.Context) ([]*model.Product, error) {
	var rows []*model.Product
	err := r.db.WithContext(ctx).Preload("Ingredients").Order("id").Find(&rows).Error
	return rows, err
}

func (r *productRepository) FindVariant(ctx context.Context, tx *gorm.DB, parentID uint, calories int) (*model.Product, error) {
	var p model.Product
	err := tx.WithContext(ctx).
		Where("parent_id = ? AND calories = ?", parentID, calories).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Product) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *productRepository) Save(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error
}
