package model

import (
	"math"
	"time"
)

// Promo 促销码。used_count 只能在结算事务内、持有行锁时递增，
// 保证 used_count <= usage_limit 在并发兑换下也成立。
type Promo struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	PromoCode string `json:"promo_code" gorm:"size:50;uniqueIndex;not null"`

	Discount    float64 `json:"discount" gorm:"not null"` // 折扣比例 0..1
	MaxDiscount *int    `json:"max_discount"`             // 折扣金额上限，可为空

	// 布尔开关不设列默认值：false 必须能按字面落库，建行方显式赋值
	IsEnabled  bool `json:"is_enabled"`
	IsFinished bool `json:"is_finished"`

	ActiveFrom  time.Time `json:"active_from"`
	ActiveUntil time.Time `json:"active_until"`

	UsageLimit int `json:"usage_limit" gorm:"not null"`
	UsedCount  int `json:"used_count" gorm:"default:0"`

	CreatorID *uint     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Promo) TableName() string { return "promos" }

// IsActive 当前是否可兑换（不含预占，纯判断）
func (p *Promo) IsActive(now time.Time) bool {
	if !p.IsEnabled || p.IsFinished {
		return false
	}
	if now.Before(p.ActiveFrom) || now.After(p.ActiveUntil) {
		return false
	}
	return p.UsedCount < p.UsageLimit
}

// DiscountFor 计算对 basePrice 的折扣金额，受上限约束
func (p *Promo) DiscountFor(basePrice int) int {
	d := int(math.Round(float64(basePrice) * p.Discount))
	if p.MaxDiscount != nil && d > *p.MaxDiscount {
		d = *p.MaxDiscount
	}
	return d
}

// PromoUsage 一次兑换记录，创建时在同一事务内递增所属 Promo 的 used_count
type PromoUsage struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	PromoID uint   `json:"promo_id" gorm:"index;not null"`
	Promo   *Promo `json:"promo,omitempty" gorm:"foreignKey:PromoID"`

	UserID  uint  `json:"user_id" gorm:"index;not null"`
	OrderID *uint `json:"order_id" gorm:"index"`

	Discounted int       `json:"discounted" gorm:"not null"` // 实际折扣金额
	UsedAt     time.Time `json:"used_at"`
}

func (PromoUsage) TableName() string { return "promo_usages" }
