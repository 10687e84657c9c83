package service

import (
	"context"
	"time"

	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

// PromoQuote 促销码查询结果（未预占）
type PromoQuote struct {
	IsActive    bool    `json:"is_active"`
	Discount    float64 `json:"discount,omitempty"`
	MaxDiscount *int    `json:"max_discount,omitempty"`
}

// PromoService 促销码的只读查询与后台管理
type PromoService struct {
	promos repository.PromoRepository
	now    func() time.Time
}

func NewPromoService(promos repository.PromoRepository, now func() time.Time) *PromoService {
	if now == nil {
		now = time.Now
	}
	return &PromoService{promos: promos, now: now}
}

// Check 促销码当前是否可兑换，不递增 used_count
func (s *PromoService) Check(ctx context.Context, code string) (*PromoQuote, error) {
	promo, err := s.promos.GetActiveByCode(ctx, code, s.now())
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return &PromoQuote{IsActive: false}, nil
	}
	return &PromoQuote{IsActive: true, Discount: promo.Discount, MaxDiscount: promo.MaxDiscount}, nil
}

// Get 按 id 读取
func (s *PromoService) Get(ctx context.Context, id uint) (*model.Promo, error) {
	return s.promos.GetByID(ctx, id)
}

// List 后台全量列表，含已停用/已用尽的
func (s *PromoService) List(ctx context.Context) ([]*model.Promo, error) {
	return s.promos.List(ctx)
}

// Create 新建促销码
func (s *PromoService) Create(ctx context.Context, promo *model.Promo) error {
	if promo.Discount < 0 || promo.Discount > 1 {
		return Invalid("Discount must be between 0 and 1.")
	}
	if promo.UsageLimit < 1 {
		return Invalid("Usage limit must be at least 1.")
	}
	return s.promos.Create(ctx, promo)
}

// Update 修改促销码；已标记 finished 的促销码不可再编辑
func (s *PromoService) Update(ctx context.Context, existing, updated *model.Promo) error {
	if existing.IsFinished {
		return Invalid("Finished promo cannot be edited.")
	}
	if updated.UsedCount > updated.UsageLimit {
		return Invalid("Used count cannot exceed usage limit.")
	}
	return s.promos.Update(ctx, updated)
}
