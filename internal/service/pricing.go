package service

import (
	"fmt"
	"math"

	"github.com/0xDyno/healthy-blend/internal/model"
)

// 定价全部是对目录数据的纯函数，金额为货币最小单位（整数）。

// IngredientSellingPrice 配料每克售价：固定售价优先，否则进价×乘数
func IngredientSellingPrice(ing *model.Ingredient) float64 {
	if ing.SellingPrice != nil && *ing.SellingPrice > 0 {
		return float64(*ing.SellingPrice)
	}
	return math.Round(ing.PurchasePrice * ing.PriceMultiplier)
}

// IngredientPrice 配料 grams 克的售价
func IngredientPrice(ing *model.Ingredient, grams float64) int {
	return int(math.Round(IngredientSellingPrice(ing) * grams))
}

// ProductBasePrice 商品底价：配料进价×用量之和
func ProductBasePrice(p *model.Product) int {
	var total float64
	for _, pi := range p.Ingredients {
		total += pi.Ingredient.PurchasePrice * pi.WeightGrams
	}
	return int(math.Round(total))
}

// ProductSellingPrice 商品售价：固定售价优先，否则底价×乘数
func ProductSellingPrice(p *model.Product) int {
	if p.SellingPrice != nil && *p.SellingPrice > 0 {
		return *p.SellingPrice
	}
	return int(math.Round(float64(p.Price) * p.PriceMultiplier))
}

// ProductPriceForCalories 按目标卡路里换算售价；商品本身卡路里为0时无定义
func ProductPriceForCalories(p *model.Product, calories int) (float64, error) {
	base := p.NutritionalValue.Calories
	if base <= 0 {
		return 0, fmt.Errorf("product %d has zero base calories", p.ID)
	}
	factor := float64(calories) / base
	return float64(ProductSellingPrice(p)) * factor, nil
}

// ProductWeightForCalories 按目标卡路里换算重量
func ProductWeightForCalories(p *model.Product, calories int) (float64, error) {
	base := p.NutritionalValue.Calories
	if base <= 0 {
		return 0, fmt.Errorf("product %d has zero base calories", p.ID)
	}
	return p.Weight * float64(calories) / base, nil
}

// FinalPrice 折后终价：先服务费后税，单次取整。
// 顺序有业务含义：服务费打在折后底价上，税打在含服务费的价上。
func FinalPrice(discountedBase float64, service, tax float64) int {
	withService := discountedBase + discountedBase*service
	return int(math.Round(withService + withService*tax))
}

// PriceWithinTolerance 前后端价格是否在允许偏差内。
// 容差只用来吸收前端展示层的浮点/舍入误差，不是给客户端的折扣空间。
func PriceWithinTolerance(server, client, tolerancePercent float64) bool {
	if server == 0 {
		return client == 0
	}
	diff := math.Abs(server-client) / math.Abs(server) * 100
	return diff < tolerancePercent
}
