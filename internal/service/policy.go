package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

// PolicyResult 闸门放行结果：配置快照 + 促销码报价（未预占）
type PolicyResult struct {
	Setting *model.Setting
	// 促销码通过顾问式检查后的报价；真正的占用发生在提交事务内
	Promo    *model.Promo
	Discount int
}

// PolicyGate 独立于定价的业务策略检查。全部检查是顾问性的：
// 最终裁决在提交事务里，这里拦截的是绝大多数明确不合法的请求。
type PolicyGate struct {
	settings repository.SettingRepository
	promos   repository.PromoRepository
	cfg      config.CheckoutConfig
	now      func() time.Time
}

func NewPolicyGate(settings repository.SettingRepository, promos repository.PromoRepository,
	cfg config.CheckoutConfig, now func() time.Time) *PolicyGate {
	if now == nil {
		now = time.Now
	}
	return &PolicyGate{settings: settings, promos: promos, cfg: cfg, now: now}
}

// Check 按序执行全部策略检查，任一失败即整体失败
func (g *PolicyGate) Check(ctx context.Context, cart *CartResult, promoCode string) (*PolicyResult, error) {
	setting, err := g.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !setting.CanOrder {
		return nil, Invalid("Currently, ordering is not available. We apologize for the inconvenience.")
	}

	if err := g.checkWorkingTime(ctx, setting); err != nil {
		return nil, err
	}

	res := &PolicyResult{Setting: setting}
	if promoCode != "" {
		promo, err := g.resolvePromo(ctx, promoCode)
		if err != nil {
			return nil, err
		}
		res.Promo = promo
		res.Discount = promo.DiscountFor(Round(cart.RawPrice))
	}

	if err := g.checkBounds(cart, setting, res.Promo != nil); err != nil {
		return nil, err
	}

	if err := checkIngredientAvailability(cart.Ingredients); err != nil {
		return nil, err
	}

	return res, nil
}

// checkWorkingTime 营业时间：当天开门、在营业区间内、且未进入打烊缓冲期
func (g *PolicyGate) checkWorkingTime(ctx context.Context, setting *model.Setting) error {
	now := g.now()
	day, err := g.settings.GetDay(ctx, model.Weekday(now))
	if err != nil {
		return err
	}

	if !day.IsOpen {
		return Invalid("Orders are unavailable on non-working days.")
	}

	open, close, err := day.Window(now)
	if err != nil {
		return err
	}

	if now.Before(open) || now.After(close) {
		return Invalid("Orders are only available during working hours: from %s to %s.", day.OpenHours, day.CloseHours)
	}

	cutoff := close.Add(-time.Duration(setting.CloseKitchenBefore) * time.Minute)
	if !now.Before(cutoff) {
		return Invalid("Orders close %d minutes before the end of working hours.", setting.CloseKitchenBefore)
	}

	return nil
}

// checkBounds 金额/重量上下限。带促销码时最小消费按配置豁免，
// 因为促销本来就会把价格打到下限以下。
func (g *PolicyGate) checkBounds(cart *CartResult, setting *model.Setting, hasPromo bool) error {
	price := Round(cart.RawPrice)

	waiveMin := hasPromo && g.cfg.WaiveMinWithPromo
	if setting.MinOrderAmount > 0 && !waiveMin && price < setting.MinOrderAmount {
		return Invalid("Minimum order amount is %d.", setting.MinOrderAmount)
	}
	if setting.MaxOrderAmount > 0 && price > setting.MaxOrderAmount {
		return Invalid("Maximum order amount is %d.", setting.MaxOrderAmount)
	}
	if setting.MaxOrderWeight > 0 && cart.TotalWeight > setting.MaxOrderWeight {
		return Invalid("Maximum order weight is %.0fg.", setting.MaxOrderWeight)
	}
	return nil
}

// checkIngredientAvailability 所有被引用配料必须在售且可点，
// 违规的配料在一条错误里全部列出
func checkIngredientAvailability(ingredients map[uint]*model.Ingredient) error {
	var offending []string
	for _, ing := range ingredients {
		if !ing.Orderable() {
			offending = append(offending, ing.Name)
		}
	}
	if len(offending) == 0 {
		return nil
	}
	sort.Strings(offending)
	return Invalid("We're sorry to tell you that following ingredients are not available: %s.",
		strings.Join(offending, ", "))
}

// resolvePromo 顾问式促销码解析，不递增 used_count
func (g *PolicyGate) resolvePromo(ctx context.Context, code string) (*model.Promo, error) {
	promo, err := g.promos.GetActiveByCode(ctx, code, g.now())
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, Invalid("It appears the promo code entered is not valid.")
	}
	return promo, nil
}
