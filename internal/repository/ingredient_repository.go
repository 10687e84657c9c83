package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
)

// IngredientRepository 配料仓储
type IngredientRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Ingredient, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Ingredient, error)
	ListMenu(ctx context.Context) ([]*model.Ingredient, error)
	ListAll(ctx context.Context) ([]*model.Ingredient, error)
	Create(ctx context.Context, ing *model.Ingredient) error
	Update(ctx context.Context, ing *model.Ingredient) error
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) GetByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ing model.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *ingredientRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Ingredient, error) {
	var rows []*model.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	res := make(map[uint]*model.Ingredient, len(rows))
	for _, ing := range rows {
		res[ing.ID] = ing
	}
	return res, nil
}

func (r *ingredientRepository) ListMenu(ctx context.Context) ([]*model.Ingredient, error) {
	var rows []*model.Ingredient
	err := r.db.WithContext(ctx).Where("is_menu = ?", true).Order("name").Find(&rows).Error
	return rows, err
}

func (r *ingredientRepository) ListAll(ctx context.Context) ([]*model.Ingredient, error) {
	var rows []*model.Ingredient
	err := r.db.WithContext(ctx).Order("name").Find(&rows).Error
	return rows, err
}

func (r *ingredientRepository) Create(ctx context.Context, ing *model.Ingredient) error {
	return r.db.WithContext(ctx).Create(ing).Error
}

func (r *ingredientRepository) Update(ctx context.Context, ing *model.Ingredient) error {
	return r.db.WithContext(ctx).Save(ing).Error
}
