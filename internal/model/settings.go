package model

import (
	"fmt"
	"time"
)

// Setting 全局业务配置，单行（ID=1），结算管线只读
type Setting struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Tax     float64 `json:"tax" gorm:"default:0"`     // 税率，0.10 = 10%
	Service float64 `json:"service" gorm:"default:0"` // 服务费率

	CanOrder bool `json:"can_order"`

	MinOrderAmount int     `json:"min_order_amount" gorm:"default:0"`
	MaxOrderAmount int     `json:"max_order_amount" gorm:"default:0"` // 0 表示不限
	MaxOrderWeight float64 `json:"max_order_weight" gorm:"default:0"` // 克，0 表示不限
	MinBlendWeight float64 `json:"min_blend_weight" gorm:"default:0"` // 混合单行的最小重量

	CloseKitchenBefore int `json:"close_kitchen_before" gorm:"default:20"` // 打烊前N分钟停止下单

	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

// DaySetting 每周营业时间，day: 0=Monday ... 6=Sunday（与原后台约定一致）
type DaySetting struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Day        int    `json:"day" gorm:"uniqueIndex;not null"`
	IsOpen     bool   `json:"is_open"`
	OpenHours  string `json:"open_hours" gorm:"size:5;default:'10:00'"`  // HH:MM
	CloseHours string `json:"close_hours" gorm:"size:5;default:'21:00'"` // HH:MM
}

func (DaySetting) TableName() string { return "day_settings" }

// Window 把 HH:MM 的营业时间展开成某一天的具体时刻
func (d *DaySetting) Window(date time.Time) (open, close time.Time, err error) {
	open, err = combine(date, d.OpenHours)
	if err != nil {
		return
	}
	close, err = combine(date, d.CloseHours)
	return
}

func combine(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse hours %q: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// Weekday time.Weekday(周日=0) 转为本系统的周一=0
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
