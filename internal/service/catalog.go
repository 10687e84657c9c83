package service

import (
	"context"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

// CatalogService 后台目录写入。结算管线对目录只读，
// 所有目录不变量（min/max、可见性、派生字段）在这里的写路径上维护。
type CatalogService struct {
	db          *gorm.DB
	products    repository.ProductRepository
	ingredients repository.IngredientRepository
	menu        *MenuService
}

func NewCatalogService(db *gorm.DB, products repository.ProductRepository,
	ingredients repository.IngredientRepository, menu *MenuService) *CatalogService {
	return &CatalogService{db: db, products: products, ingredients: ingredients, menu: menu}
}

// SaveIngredient 创建/更新配料。配料被菜单商品引用时不允许撤出菜单。
func (s *CatalogService) SaveIngredient(ctx context.Context, ing *model.Ingredient) error {
	if err := ing.Validate(); err != nil {
		return Invalid("%s", err.Error())
	}

	if ing.ID != 0 && !ing.IsMenu {
		names, err := s.menuProductsUsing(ctx, ing.ID)
		if err != nil {
			return err
		}
		if len(names) > 0 {
			return Invalid("Ingredient %q is used by menu products: %s.", ing.Name, strings.Join(names, ", "))
		}
	}

	var err error
	if ing.ID == 0 {
		err = s.ingredients.Create(ctx, ing)
	} else {
		err = s.ingredients.Update(ctx, ing)
	}
	if err != nil {
		return err
	}
	s.menu.Invalidate(ctx)
	return nil
}

// ToggleIngredientAvailability 非管理员角色只允许切换在售状态
func (s *CatalogService) ToggleIngredientAvailability(ctx context.Context, id uint) (*model.Ingredient, error) {
	ing, err := s.ingredients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ing.IsAvailable = !ing.IsAvailable
	if err := s.ingredients.Update(ctx, ing); err != nil {
		return nil, err
	}
	s.menu.Invalidate(ctx)
	return ing, nil
}

// SaveProduct 创建/更新官方商品，并从配料组成重算派生字段。
// 非官方商品（变体/自选）由结算事务创建，不可经目录管理修改。
func (s *CatalogService) SaveProduct(ctx context.Context, p *model.Product) error {
	if p.ID != 0 {
		existing, err := s.products.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if !existing.IsOfficial {
			return Invalid("Non-official products are immutable.")
		}
	}

	if err := s.recompute(ctx, p); err != nil {
		return err
	}

	if err := s.products.Save(ctx, p); err != nil {
		return err
	}
	s.menu.Invalidate(ctx)
	return nil
}

// recompute 重量、营养与底价永远是当前配料组成的加权和
func (s *CatalogService) recompute(ctx context.Context, p *model.Product) error {
	if len(p.Ingredients) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(p.Ingredients))
	for _, pi := range p.Ingredients {
		ids = append(ids, pi.IngredientID)
	}
	known, err := s.ingredients.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	var weight, base float64
	var nutrition model.NutritionalValue
	for _, pi := range p.Ingredients {
		ing, ok := known[pi.IngredientID]
		if !ok {
			return Invalid("Unknown ingredient id %d.", pi.IngredientID)
		}
		if pi.WeightGrams < ing.MinOrder || pi.WeightGrams > ing.MaxOrder {
			return Invalid("Weight %.0fg is out of range for %q, allowed %.0f - %.0fg.",
				pi.WeightGrams, ing.Name, ing.MinOrder, ing.MaxOrder)
		}
		weight += pi.WeightGrams
		base += ing.PurchasePrice * pi.WeightGrams
		nutrition.AddWeighted(ing.NutritionalValue, pi.WeightGrams)
	}

	p.Weight = weight
	p.Price = int(math.Round(base))
	p.NutritionalValue = nutrition
	return nil
}

// menuProductsUsing 引用某配料的菜单商品名
func (s *CatalogService) menuProductsUsing(ctx context.Context, ingredientID uint) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&model.Product{}).
		Joins("JOIN product_ingredients pi ON pi.product_id = products.id").
		Where("pi.ingredient_id = ? AND products.is_menu = ?", ingredientID, true).
		Pluck("products.name", &names).Error
	return names, err
}
