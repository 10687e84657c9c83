package model

import (
	"fmt"
	"math"
)

// NutritionalValue 每100g营养成分。固定字段 + 显式逐字段运算，
// 不做运行时反射，字段增减时编译器兜底。
type NutritionalValue struct {
	Calories      float64 `json:"calories" gorm:"default:0"`
	Proteins      float64 `json:"proteins" gorm:"default:0"`
	Fats          float64 `json:"fats" gorm:"default:0"`
	SaturatedFats float64 `json:"saturated_fats" gorm:"default:0"`
	Carbohydrates float64 `json:"carbohydrates" gorm:"default:0"`
	Sugars        float64 `json:"sugars" gorm:"default:0"`
	Fiber         float64 `json:"fiber" gorm:"default:0"`

	VitaminA   float64 `json:"vitamin_a" gorm:"default:0"`
	VitaminC   float64 `json:"vitamin_c" gorm:"default:0"`
	VitaminD   float64 `json:"vitamin_d" gorm:"default:0"`
	VitaminE   float64 `json:"vitamin_e" gorm:"default:0"`
	VitaminK   float64 `json:"vitamin_k" gorm:"default:0"`
	Thiamin    float64 `json:"thiamin" gorm:"default:0"`
	Riboflavin float64 `json:"riboflavin" gorm:"default:0"`
	Niacin     float64 `json:"niacin" gorm:"default:0"`
	VitaminB6  float64 `json:"vitamin_b6" gorm:"default:0"`
	Folate     float64 `json:"folate" gorm:"default:0"`
	VitaminB12 float64 `json:"vitamin_b12" gorm:"default:0"`

	Calcium    float64 `json:"calcium" gorm:"default:0"`
	Iron       float64 `json:"iron" gorm:"default:0"`
	Magnesium  float64 `json:"magnesium" gorm:"default:0"`
	Phosphorus float64 `json:"phosphorus" gorm:"default:0"`
	Potassium  float64 `json:"potassium" gorm:"default:0"`
	Sodium     float64 `json:"sodium" gorm:"default:0"`
	Zinc       float64 `json:"zinc" gorm:"default:0"`
	Copper     float64 `json:"copper" gorm:"default:0"`
	Manganese  float64 `json:"manganese" gorm:"default:0"`
	Selenium   float64 `json:"selenium" gorm:"default:0"`
}

// fields 按固定顺序返回所有字段指针，Add/Scale 复用；
// 编译期常量列表，新增字段必须同步到这里。
func (n *NutritionalValue) fields() [28]*float64 {
	return [28]*float64{
		&n.Calories, &n.Proteins, &n.Fats, &n.SaturatedFats, &n.Carbohydrates, &n.Sugars, &n.Fiber,
		&n.VitaminA, &n.VitaminC, &n.VitaminD, &n.VitaminE, &n.VitaminK,
		&n.Thiamin, &n.Riboflavin, &n.Niacin, &n.VitaminB6, &n.Folate, &n.VitaminB12,
		&n.Calcium, &n.Iron, &n.Magnesium, &n.Phosphorus, &n.Potassium, &n.Sodium,
		&n.Zinc, &n.Copper, &n.Manganese, &n.Selenium,
	}
}

// Add 叠加整份数值
func (n *NutritionalValue) Add(other NutritionalValue) {
	dst := n.fields()
	src := other.fields()
	for i := range dst {
		*dst[i] = round2(*dst[i] + *src[i])
	}
}

// AddWeighted 叠加某配料 grams 克的营养（other 为每100g数值）
func (n *NutritionalValue) AddWeighted(other NutritionalValue, grams float64) {
	ratio := grams / 100
	dst := n.fields()
	src := other.fields()
	for i := range dst {
		*dst[i] = round2(*dst[i] + *src[i]*ratio)
	}
}

// Scale 整体缩放（卡路里变体用）
func (n NutritionalValue) Scale(factor float64) NutritionalValue {
	out := n
	fs := out.fields()
	for i := range fs {
		*fs[i] = round2(*fs[i] * factor)
	}
	return out
}

// Validate 校验客户端提交的营养汇总
func (n *NutritionalValue) Validate() error {
	names := nutrientNames
	fs := n.fields()
	for i := range fs {
		v := *fs[i]
		if v < 0 {
			return fmt.Errorf("value for %q must be non-negative", names[i])
		}
		if v > 100000 {
			return fmt.Errorf("value for %q exceeds maximum limit of 100000", names[i])
		}
	}
	return nil
}

var nutrientNames = [28]string{
	"calories", "proteins", "fats", "saturated_fats", "carbohydrates", "sugars", "fiber",
	"vitamin_a", "vitamin_c", "vitamin_d", "vitamin_e", "vitamin_k",
	"thiamin", "riboflavin", "niacin", "vitamin_b6", "folate", "vitamin_b12",
	"calcium", "iron", "magnesium", "phosphorus", "potassium", "sodium",
	"zinc", "copper", "manganese", "selenium",
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
