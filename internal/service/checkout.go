package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
	"github.com/0xDyno/healthy-blend/pkg/logger"
)

// CheckoutService 结算提交：校验 → 策略闸门 → 单事务落库。
// 事务内任何一步失败都会整体回滚，不留孤儿快照。
type CheckoutService struct {
	db        *gorm.DB
	validator *CartValidator
	gate      *PolicyGate
	products  repository.ProductRepository
	orders    repository.OrderRepository
	promos    repository.PromoRepository
	history   repository.HistoryRepository
	cfg       config.CheckoutConfig
	now       func() time.Time
}

func NewCheckoutService(db *gorm.DB, validator *CartValidator, gate *PolicyGate,
	products repository.ProductRepository, orders repository.OrderRepository,
	promos repository.PromoRepository, history repository.HistoryRepository,
	cfg config.CheckoutConfig, now func() time.Time) *CheckoutService {
	if now == nil {
		now = time.Now
	}
	return &CheckoutService{
		db: db, validator: validator, gate: gate,
		products: products, orders: orders, promos: promos, history: history,
		cfg: cfg, now: now,
	}
}

// Checkout 处理一次结算。成功返回已提交的订单；校验类失败返回 *ValidationError。
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, req *CheckoutRequest) (*model.Order, error) {
	if err := req.NutritionalValue.Validate(); err != nil {
		return nil, Invalid("%s", err.Error())
	}

	cart, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	policy, err := s.gate.Check(ctx, cart, req.PromoCode)
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, txErr = s.commit(ctx, tx, userID, req, cart, policy)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order committed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.Int("total_price", order.TotalPrice))
	return order, nil
}

// commit 事务体：价格对账 → 商品快照 → 订单 → 订单行 → 促销占用 → 审计
func (s *CheckoutService) commit(ctx context.Context, tx *gorm.DB, userID uint,
	req *CheckoutRequest, cart *CartResult, policy *PolicyResult) (*model.Order, error) {

	basePrice := Round(cart.RawPrice)
	discount := policy.Discount
	finalPrice := FinalPrice(float64(basePrice-discount), policy.Setting.Service, policy.Setting.Tax)

	tol := s.cfg.PriceTolerancePercent
	if !PriceWithinTolerance(float64(basePrice), req.BasePrice, tol) ||
		!PriceWithinTolerance(float64(finalPrice), req.FinalPrice, tol) {
		return nil, Invalid("Wrong calculated total price. Web price: %.0f, official price: %d.",
			req.FinalPrice, finalPrice)
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = model.OrderTypeOffline
	}

	order := &model.Order{
		UserID:           userID,
		OrderStatus:      model.OrderStatusPending,
		OrderType:        orderType,
		PaymentType:      req.PaymentType,
		Tax:              policy.Setting.Tax,     // 快照，后续不跟随配置
		Service:          policy.Setting.Service, // 快照
		BasePrice:        basePrice,
		TotalPrice:       finalPrice,
		NutritionalValue: cart.Nutrition(),
	}
	if err := order.Validate(); err != nil {
		return nil, Invalid("%s", err.Error())
	}
	if err := s.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, line := range cart.Custom {
		product, err := s.materializeCustom(ctx, tx, line)
		if err != nil {
			return nil, err
		}
		op := &model.OrderProduct{
			OrderID:   order.ID,
			ProductID: product.ID,
			Amount:    line.Amount,
			Price:     Round(line.Price),
			DoBlend:   line.DoBlend,
		}
		if err := tx.WithContext(ctx).Create(op).Error; err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
	}

	for _, line := range cart.Official {
		product, err := s.materializeOfficial(ctx, tx, line)
		if err != nil {
			return nil, err
		}
		op := &model.OrderProduct{
			OrderID:   order.ID,
			ProductID: product.ID,
			Amount:    line.Amount,
			Price:     Round(line.Price),
		}
		if err := tx.WithContext(ctx).Create(op).Error; err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
	}

	if policy.Promo != nil {
		if err := s.finalizePromo(ctx, tx, order, policy.Promo, discount); err != nil {
			return nil, err
		}
	}

	// 审计在事务边界显式调用，而不是藏在存储钩子里
	if err := s.history.AppendTx(ctx, tx, model.SnapshotOrder(order, &userID)); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	return order, nil
}

// materializeCustom 为自选行创建不可变的非官方商品快照
func (s *CheckoutService) materializeCustom(ctx context.Context, tx *gorm.DB, line ResolvedCustom) (*model.Product, error) {
	product := &model.Product{
		Name:        "Custom Meal",
		Description: fmt.Sprintf("Custom Meal - %s", s.now().Format("02-01-2006 15:04:05")),
		ProductType: model.ProductTypeDish,
		IsOfficial:  false,
		IsMenu:      false,
		Weight:      line.Weight,
	}

	var base float64
	for _, item := range line.Items {
		product.Ingredients = append(product.Ingredients, model.ProductIngredient{
			IngredientID: item.Ingredient.ID,
			WeightGrams:  item.Weight,
		})
		product.NutritionalValue.AddWeighted(item.Ingredient.NutritionalValue, item.Weight)
		base += item.Ingredient.PurchasePrice * item.Weight
	}
	product.Price = int(math.Round(base))

	if err := s.products.CreateTx(ctx, tx, product); err != nil {
		return nil, fmt.Errorf("create custom product: %w", err)
	}
	return product, nil
}

// materializeOfficial 目录行落库：原生卡路里直接复用官方商品，
// 其他卡路里按 (父商品, 卡路里) 复用或创建变体。
// 变体复用只是省存储的优化，重复变体不破坏数据。
func (s *CheckoutService) materializeOfficial(ctx context.Context, tx *gorm.DB, line ResolvedOfficial) (*model.Product, error) {
	parent := line.Product

	// 饮品与原生卡路里的菜品不需要变体
	if !parent.IsDish() || line.Calories == Round(parent.NutritionalValue.Calories) {
		return parent, nil
	}

	existing, err := s.products.FindVariant(ctx, tx, parent.ID, line.Calories)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	factor := float64(line.Calories) / parent.NutritionalValue.Calories
	parentID := parent.ID
	calories := line.Calories
	variant := &model.Product{
		Name:             fmt.Sprintf("%s %d", parent.Name, line.Calories),
		Description:      parent.Description,
		ProductType:      parent.ProductType,
		IsOfficial:       false,
		IsMenu:           false,
		Price:            parent.Price,
		PriceMultiplier:  parent.PriceMultiplier,
		SellingPrice:     parent.SellingPrice,
		Weight:           line.Weight,
		ParentID:         &parentID,
		Calories:         &calories,
		NutritionalValue: parent.NutritionalValue.Scale(factor),
	}
	for _, pi := range parent.Ingredients {
		variant.Ingredients = append(variant.Ingredients, model.ProductIngredient{
			IngredientID: pi.IngredientID,
			WeightGrams:  round2(pi.WeightGrams * factor),
		})
	}

	// 并发下另一请求可能刚创建同一 (父商品, 卡路里) 变体。
	// postgres 上唯一索引冲突会让整个事务进入中止态，
	// 所以创建前先立 savepoint，冲突后回滚到它再回查复用。
	if err := tx.SavePoint("variant").Error; err != nil {
		return nil, fmt.Errorf("savepoint: %w", err)
	}
	if err := s.products.CreateTx(ctx, tx, variant); err != nil {
		if rbErr := tx.RollbackTo("variant").Error; rbErr != nil {
			return nil, fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
		again, findErr := s.products.FindVariant(ctx, tx, parent.ID, line.Calories)
		if findErr == nil && again != nil {
			return again, nil
		}
		return nil, fmt.Errorf("create variant product: %w", err)
	}
	return variant, nil
}

// finalizePromo 行锁下复核并占用促销码。闸门阶段的检查只是顾问式的，
// 这里的复核才是对 used_count <= usage_limit 的最终裁决。
func (s *CheckoutService) finalizePromo(ctx context.Context, tx *gorm.DB, order *model.Order,
	promo *model.Promo, discount int) error {

	locked, err := s.promos.GetForUpdate(ctx, tx, promo.ID)
	if err != nil {
		return fmt.Errorf("lock promo: %w", err)
	}
	if !locked.IsActive(s.now()) {
		return Invalid("The promo code has just been exhausted, please retry without it.")
	}

	orderID := order.ID
	usage := &model.PromoUsage{
		PromoID:    locked.ID,
		UserID:     order.UserID,
		OrderID:    &orderID,
		Discounted: discount,
		UsedAt:     s.now(),
	}
	if err := s.promos.CreateUsageTx(ctx, tx, usage); err != nil {
		return fmt.Errorf("create promo usage: %w", err)
	}

	order.PromoUsageID = &usage.ID
	if err := tx.WithContext(ctx).Model(order).Update("promo_usage_id", usage.ID).Error; err != nil {
		return fmt.Errorf("link promo usage: %w", err)
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
