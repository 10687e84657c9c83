package model

import (
	"fmt"
	"time"
)

// 订单状态机：pending → cooking → ready → finished；cancelled/problem 为终态分支
const (
	OrderStatusPending   = "pending"
	OrderStatusCooking   = "cooking"
	OrderStatusReady     = "ready"
	OrderStatusFinished  = "finished"
	OrderStatusCancelled = "cancelled"
	OrderStatusProblem   = "problem"
)

// 订单/支付方式
const (
	OrderTypeOffline = "offline"
	OrderTypeOnline  = "online"

	PaymentTypeCash = "cash"
	PaymentTypeCard = "card"
	PaymentTypeQR   = "qr"
)

// OrderStatuses 合法状态全集
var OrderStatuses = []string{
	OrderStatusPending, OrderStatusCooking, OrderStatusReady,
	OrderStatusFinished, OrderStatusCancelled, OrderStatusProblem,
}

// Order 订单。Tax/Service 是下单时刻 Settings 的快照，后续不跟随配置变化。
// 由结算事务一次性创建，之后只允许状态流转类修改。
type Order struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	UserID uint  `json:"user_id" gorm:"index;not null"`
	User   *User `json:"-" gorm:"foreignKey:UserID"`

	OrderStatus string `json:"order_status" gorm:"size:20;default:pending;index"`
	OrderType   string `json:"order_type" gorm:"size:20;default:offline"`
	PaymentType string `json:"payment_type" gorm:"size:20;default:card"`
	PaymentID   string `json:"payment_id" gorm:"size:100;default:''"`

	IsPaid     bool `json:"is_paid" gorm:"default:false"`
	IsRefunded bool `json:"is_refunded" gorm:"default:false"`

	Tax     float64 `json:"tax" gorm:"not null"`     // 快照
	Service float64 `json:"service" gorm:"not null"` // 快照

	BasePrice  int `json:"base_price" gorm:"not null"`
	TotalPrice int `json:"total_price" gorm:"not null"`

	PromoUsageID *uint       `json:"promo_usage_id"`
	PromoUsage   *PromoUsage `json:"promo_usage,omitempty" gorm:"foreignKey:PromoUsageID"`

	PublicNote  string `json:"public_note"`
	PrivateNote string `json:"-"`

	NutritionalValue NutritionalValue `json:"nutritional_value" gorm:"embedded;embeddedPrefix:nv_"`

	UserLastUpdateID *uint `json:"user_last_update_id"`

	CreatedAt  time.Time  `json:"created_at" gorm:"index"`
	PaidAt     *time.Time `json:"paid_at"`
	ReadyAt    *time.Time `json:"ready_at"`
	RefundedAt *time.Time `json:"refunded_at"`

	Products []OrderProduct `json:"products" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// IsPostPayment 状态是否要求已支付
func (o *Order) IsPostPayment() bool {
	switch o.OrderStatus {
	case OrderStatusCooking, OrderStatusReady, OrderStatusFinished:
		return true
	}
	return false
}

// Validate 订单不变量，创建与每次状态流转都要过
func (o *Order) Validate() error {
	valid := false
	for _, s := range OrderStatuses {
		if o.OrderStatus == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown order status %q", o.OrderStatus)
	}

	switch o.PaymentType {
	case PaymentTypeCash, PaymentTypeCard, PaymentTypeQR:
	default:
		return fmt.Errorf("unknown payment type %q", o.PaymentType)
	}

	if o.IsPostPayment() && !o.IsPaid {
		return fmt.Errorf("order cannot be %s while unpaid", o.OrderStatus)
	}
	if o.IsRefunded && !o.IsPaid {
		return fmt.Errorf("order cannot be refunded while unpaid")
	}
	if o.IsPaid && o.PaymentType != PaymentTypeCash && o.PaymentID == "" {
		return fmt.Errorf("payment id is required for %s payments", o.PaymentType)
	}
	return nil
}

// OrderProduct 订单行，创建后不可变。Price 为锁定的行单价。
type OrderProduct struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	OrderID   uint     `json:"order_id" gorm:"index;not null"`
	ProductID uint     `json:"product_id" gorm:"index;not null"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`

	Amount  int  `json:"amount" gorm:"not null"`
	Price   int  `json:"price" gorm:"not null"`
	DoBlend bool `json:"do_blend" gorm:"default:false"`
}

func (OrderProduct) TableName() string { return "order_products" }
