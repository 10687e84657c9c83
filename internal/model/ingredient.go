package model

import (
	"fmt"
	"time"
)

// 配料类型
const (
	IngredientTypeBase      = "base"
	IngredientTypeProtein   = "protein"
	IngredientTypeVegetable = "vegetable"
	IngredientTypeDairy     = "dairy"
	IngredientTypeFruit     = "fruit"
	IngredientTypeTopping   = "topping"
	IngredientTypeOther     = "other"
)

// Ingredient 配料。结算管线只读，后台目录管理负责写入。
// PurchasePrice 为每克进价，营养数据按每100g。
type Ingredient struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Name           string `json:"name" gorm:"size:100;not null"`
	Description    string `json:"description"`
	IngredientType string `json:"ingredient_type" gorm:"size:10;default:other"`

	Step     float64 `json:"step" gorm:"default:1"` // 前端调整重量的步长
	MinOrder float64 `json:"min_order" gorm:"not null"`
	MaxOrder float64 `json:"max_order" gorm:"not null"`

	IsAvailable      bool `json:"is_available"`
	IsMenu           bool `json:"is_menu" gorm:"index"` // 可被自选搭配点到
	IsDishIngredient bool `json:"is_dish_ingredient"`

	PurchasePrice   float64 `json:"purchase_price" gorm:"not null"`
	PriceMultiplier float64 `json:"price_multiplier" gorm:"default:3"`
	SellingPrice    *int    `json:"selling_price"` // 固定售价（每克），优先于乘数

	PrivateNote      string           `json:"-"`
	NutritionalValue NutritionalValue `json:"nutritional_value" gorm:"embedded;embeddedPrefix:nv_"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Ingredient) TableName() string { return "ingredients" }

// Validate 写入前的完整性检查
func (i *Ingredient) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if i.MinOrder < 0 {
		return fmt.Errorf("min order must be non-negative")
	}
	if i.MaxOrder < i.MinOrder {
		return fmt.Errorf("max order must be greater than or equal to min order")
	}
	if i.PurchasePrice < 0 || i.PriceMultiplier < 0 {
		return fmt.Errorf("price fields must be non-negative")
	}
	return nil
}

// Orderable 当前是否可被下单（在售且在菜单中）
func (i *Ingredient) Orderable() bool { return i.IsAvailable && i.IsMenu }
