package model

import "time"

// 商品类型
const (
	ProductTypeDish    = "dish"
	ProductTypeDrink   = "drink"
	ProductTypeDessert = "dessert"
)

// Product 商品。is_official=true 为后台维护的官方菜品；
// 非官方商品（自选搭配、卡路里变体）由结算事务创建，创建后不可再编辑。
// 变体通过 (ParentID, Calories) 去重复用。
type Product struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description"`
	ProductType string `json:"product_type" gorm:"size:10;default:dish"`

	IsMenu      bool `json:"is_menu" gorm:"index"`
	IsOfficial  bool `json:"is_official"`
	IsEnabled   bool `json:"is_enabled"`
	IsAvailable bool `json:"is_available"`

	Price           int     `json:"price" gorm:"default:0"` // 按配料进价算出的底价
	PriceMultiplier float64 `json:"price_multiplier" gorm:"default:3"`
	SellingPrice    *int    `json:"selling_price"` // 固定售价，优先于乘数

	Weight float64 `json:"weight" gorm:"default:0"` // 克，配料重量之和

	ParentID *uint `json:"parent_id" gorm:"uniqueIndex:idx_products_variant"`
	Calories *int  `json:"calories" gorm:"uniqueIndex:idx_products_variant"`

	PrivateNote      string           `json:"-"`
	NutritionalValue NutritionalValue `json:"nutritional_value" gorm:"embedded;embeddedPrefix:nv_"`

	Ingredients []ProductIngredient `json:"ingredients" gorm:"foreignKey:ProductID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// IsDish 是否菜品（饮品不做卡路里变体）
func (p *Product) IsDish() bool { return p.ProductType == ProductTypeDish }

// ProductIngredient 商品-配料关联，weight 必须落在配料的 min/max 区间内
type ProductIngredient struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	ProductID    uint    `json:"product_id" gorm:"index;not null"`
	IngredientID uint    `json:"ingredient_id" gorm:"index;not null"`
	WeightGrams  float64 `json:"weight_grams" gorm:"not null"`

	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID"`
}

func (ProductIngredient) TableName() string { return "product_ingredients" }
