package service

import (
	"context"
	"math"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

// CheckoutRequest 客户端提交的购物车。价格字段一律不可信，服务端重新计算，
// 仅在容差内接受客户端数字。
type CheckoutRequest struct {
	OfficialMeals []OfficialMealLine `json:"official_meals" binding:"omitempty,dive"`
	CustomMeals   []CustomMealLine   `json:"custom_meals" binding:"omitempty,dive"`

	PaymentType string `json:"payment_type" binding:"required,oneof=cash card qr"`
	OrderType   string `json:"order_type" binding:"omitempty,oneof=offline online"`
	PromoCode   string `json:"promo_code"`

	BasePrice  float64 `json:"base_price"`
	FinalPrice float64 `json:"final_price"`

	NutritionalValue model.NutritionalValue `json:"nutritional_value"`
}

// OfficialMealLine 目录菜品行，calories 为目标卡路里
type OfficialMealLine struct {
	ID       uint    `json:"id" binding:"required"`
	Amount   int     `json:"amount"`
	Calories int     `json:"calories"`
	Price    float64 `json:"price"`
}

// CustomMealLine 自选搭配行
type CustomMealLine struct {
	Ingredients []CustomMealIngredient `json:"ingredients" binding:"omitempty,dive"`
	Amount      int                    `json:"amount"`
	Price       float64                `json:"price"`
	DoBlend     bool                   `json:"do_blend"`
}

type CustomMealIngredient struct {
	ID     uint    `json:"id" binding:"required"`
	Weight float64 `json:"weight"`
}

// ResolvedOfficial 校验后的目录行：服务端重算的单价与重量
type ResolvedOfficial struct {
	Product  *model.Product
	Amount   int
	Calories int
	Price    float64 // 服务端单价
	Weight   float64 // 服务端单份重量
}

// ResolvedCustom 校验后的自选行
type ResolvedCustom struct {
	Items   []ResolvedCustomItem
	Amount  int
	Price   float64
	Weight  float64
	DoBlend bool
}

type ResolvedCustomItem struct {
	Ingredient *model.Ingredient
	Weight     float64
}

// CartResult 购物车重算结果，交给策略闸门与提交事务使用
type CartResult struct {
	RawPrice    float64 // 全部行价格 × 数量之和（折扣/税费前）
	TotalWeight float64
	// 去重后的全部被引用配料，可用性检查用
	Ingredients map[uint]*model.Ingredient
	Official    []ResolvedOfficial
	Custom      []ResolvedCustom
}

// CartValidator 购物车校验器：纯重算，不碰外部状态（目录读除外）。
// 任何一行不合法则整个购物车失败。
type CartValidator struct {
	products    repository.ProductRepository
	ingredients repository.IngredientRepository
	settings    repository.SettingRepository
	cfg         config.CheckoutConfig
}

func NewCartValidator(products repository.ProductRepository, ingredients repository.IngredientRepository,
	settings repository.SettingRepository, cfg config.CheckoutConfig) *CartValidator {
	return &CartValidator{products: products, ingredients: ingredients, settings: settings, cfg: cfg}
}

// Validate 重算整个购物车
func (v *CartValidator) Validate(ctx context.Context, req *CheckoutRequest) (*CartResult, error) {
	if len(req.OfficialMeals) == 0 && len(req.CustomMeals) == 0 {
		return nil, Invalid("The cart is empty")
	}

	setting, err := v.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	res := &CartResult{Ingredients: make(map[uint]*model.Ingredient)}

	for i, line := range req.OfficialMeals {
		resolved, err := v.validateOfficial(ctx, i, line)
		if err != nil {
			return nil, err
		}
		res.Official = append(res.Official, *resolved)
		res.RawPrice += resolved.Price * float64(resolved.Amount)
		res.TotalWeight += resolved.Weight * float64(resolved.Amount)
		for idx := range resolved.Product.Ingredients {
			ing := resolved.Product.Ingredients[idx].Ingredient
			res.Ingredients[ing.ID] = &resolved.Product.Ingredients[idx].Ingredient
		}
	}

	for i, line := range req.CustomMeals {
		resolved, err := v.validateCustom(ctx, i, line, setting)
		if err != nil {
			return nil, err
		}
		res.Custom = append(res.Custom, *resolved)
		res.RawPrice += resolved.Price * float64(resolved.Amount)
		res.TotalWeight += resolved.Weight * float64(resolved.Amount)
		for _, item := range resolved.Items {
			res.Ingredients[item.Ingredient.ID] = item.Ingredient
		}
	}

	return res, nil
}

func (v *CartValidator) validateOfficial(ctx context.Context, idx int, line OfficialMealLine) (*ResolvedOfficial, error) {
	if line.Amount < 1 || line.Amount > 10 {
		return nil, Invalid("Official meal #%d: amount must be between 1 and 10", idx+1)
	}
	if line.Calories <= 0 {
		return nil, Invalid("Official meal #%d: wrong value for calories", idx+1)
	}

	product, err := v.products.GetByID(ctx, line.ID)
	if err != nil {
		return nil, Invalid("Official meal #%d: unknown product id %d", idx+1, line.ID)
	}
	if !product.IsMenu || !product.IsEnabled || !product.IsAvailable {
		return nil, Invalid("Official meal #%d: %q is not available right now", idx+1, product.Name)
	}

	price, err := ProductPriceForCalories(product, line.Calories)
	if err != nil {
		return nil, Invalid("Official meal #%d: %q cannot be scaled by calories", idx+1, product.Name)
	}
	weight, err := ProductWeightForCalories(product, line.Calories)
	if err != nil {
		return nil, Invalid("Official meal #%d: %q cannot be scaled by calories", idx+1, product.Name)
	}

	if !PriceWithinTolerance(price, line.Price, v.cfg.PriceTolerancePercent) {
		return nil, Invalid("Official meal #%d: wrong calculated price on web-site", idx+1)
	}

	return &ResolvedOfficial{
		Product:  product,
		Amount:   line.Amount,
		Calories: line.Calories,
		Price:    price,
		Weight:   weight,
	}, nil
}

func (v *CartValidator) validateCustom(ctx context.Context, idx int, line CustomMealLine, setting *model.Setting) (*ResolvedCustom, error) {
	if line.Amount < 1 || line.Amount > 10 {
		return nil, Invalid("Custom meal #%d: amount must be between 1 and 10", idx+1)
	}
	if len(line.Ingredients) == 0 {
		return nil, Invalid("Custom meal #%d: no ingredients", idx+1)
	}

	ids := make([]uint, 0, len(line.Ingredients))
	for _, item := range line.Ingredients {
		ids = append(ids, item.ID)
	}
	known, err := v.ingredients.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedCustom{Amount: line.Amount, DoBlend: line.DoBlend}
	var linePrice float64
	for _, item := range line.Ingredients {
		ing, ok := known[item.ID]
		if !ok {
			return nil, Invalid("Custom meal #%d: unknown ingredient id %d", idx+1, item.ID)
		}
		if item.Weight < ing.MinOrder || item.Weight > ing.MaxOrder {
			return nil, Invalid("Custom meal #%d: wrong weight for %q, received %.0fg, allowed %.0f - %.0fg",
				idx+1, ing.Name, item.Weight, ing.MinOrder, ing.MaxOrder)
		}
		linePrice += float64(IngredientPrice(ing, item.Weight))
		resolved.Weight += item.Weight
		resolved.Items = append(resolved.Items, ResolvedCustomItem{Ingredient: ing, Weight: item.Weight})
	}

	if line.DoBlend && resolved.Weight < setting.MinBlendWeight {
		return nil, Invalid("Custom meal #%d: blend weight %.0fg is below the minimum of %.0fg",
			idx+1, resolved.Weight, setting.MinBlendWeight)
	}

	if !PriceWithinTolerance(linePrice, line.Price, v.cfg.PriceTolerancePercent) {
		return nil, Invalid("Custom meal #%d: wrong calculated price on web-site", idx+1)
	}
	resolved.Price = linePrice

	return resolved, nil
}

// Nutrition 按重算结果汇总整单营养
func (r *CartResult) Nutrition() model.NutritionalValue {
	var total model.NutritionalValue
	for _, line := range r.Official {
		nv := line.Product.NutritionalValue
		if base := line.Product.NutritionalValue.Calories; base > 0 {
			nv = nv.Scale(float64(line.Calories) / base)
		}
		for i := 0; i < line.Amount; i++ {
			total.Add(nv) // 商品营养已是整份汇总
		}
	}
	for _, line := range r.Custom {
		for i := 0; i < line.Amount; i++ {
			for _, item := range line.Items {
				total.AddWeighted(item.Ingredient.NutritionalValue, item.Weight)
			}
		}
	}
	return total
}

// Round 货币取整
func Round(v float64) int { return int(math.Round(v)) }
