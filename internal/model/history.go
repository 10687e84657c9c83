package model

import "time"

// OrderHistory 订单审计：每次订单写入都追加一条全字段快照，只增不改。
// 订单删除时不级联删除历史，而是把外键置空并写入 DeletedOrderID 墓碑，
// 保证对已删除订单的历史仍可查询。
type OrderHistory struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	OrderID *uint `json:"order_id" gorm:"index;constraint:OnDelete:SET NULL"`

	// 订单被删除后原 id 记录在这里
	DeletedOrderID *uint `json:"deleted_order_id" gorm:"index"`

	OrderStatus string `json:"order_status" gorm:"size:20"`
	OrderType   string `json:"order_type" gorm:"size:20"`
	PaymentType string `json:"payment_type" gorm:"size:20"`
	PaymentID   string `json:"payment_id" gorm:"size:100"`

	IsPaid     bool `json:"is_paid"`
	IsRefunded bool `json:"is_refunded"`

	Tax     float64 `json:"tax"`
	Service float64 `json:"service"`

	BasePrice  int `json:"base_price"`
	TotalPrice int `json:"total_price"`

	PublicNote  string `json:"public_note"`
	PrivateNote string `json:"-"`

	PaidAt     *time.Time `json:"paid_at"`
	ReadyAt    *time.Time `json:"ready_at"`
	RefundedAt *time.Time `json:"refunded_at"`

	// 本次变更的操作者
	EditorID *uint     `json:"editor_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (OrderHistory) TableName() string { return "order_histories" }

// SnapshotOrder 由订单当前字段构造一条历史记录
func SnapshotOrder(o *Order, editorID *uint) *OrderHistory {
	id := o.ID
	return &OrderHistory{
		OrderID:     &id,
		OrderStatus: o.OrderStatus,
		OrderType:   o.OrderType,
		PaymentType: o.PaymentType,
		PaymentID:   o.PaymentID,
		IsPaid:      o.IsPaid,
		IsRefunded:  o.IsRefunded,
		Tax:         o.Tax,
		Service:     o.Service,
		BasePrice:   o.BasePrice,
		TotalPrice:  o.TotalPrice,
		PublicNote:  o.PublicNote,
		PrivateNote: o.PrivateNote,
		PaidAt:      o.PaidAt,
		ReadyAt:     o.ReadyAt,
		RefundedAt:  o.RefundedAt,
		EditorID:    editorID,
	}
}
