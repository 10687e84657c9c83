package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

func newTestGate(t *testing.T, now func() time.Time) (*PolicyGate, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	seedCatalog(t, db)
	gate := NewPolicyGate(
		repository.NewSettingRepository(db),
		repository.NewPromoRepository(db),
		testConfig(),
		now,
	)
	return gate, db
}

func simpleCart(price float64) *CartResult {
	return &CartResult{
		RawPrice:    price,
		Ingredients: map[uint]*model.Ingredient{},
	}
}

func TestPolicyOrderingDisabled(t *testing.T) {
	gate, db := newTestGate(t, fixedNow)
	require.NoError(t, db.Model(&model.Setting{}).Where("id = 1").Update("can_order", false).Error)

	_, err := gate.Check(context.Background(), simpleCart(10000), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "not available")
}

func TestPolicyClosedDay(t *testing.T) {
	gate, db := newTestGate(t, fixedNow)
	require.NoError(t, db.Model(&model.DaySetting{}).
		Where("day = ?", model.Weekday(testNow)).
		Update("is_open", false).Error)

	_, err := gate.Check(context.Background(), simpleCart(10000), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "non-working days")
}

func TestPolicyOutsideWorkingHours(t *testing.T) {
	early := time.Date(2024, 6, 5, 8, 0, 0, 0, time.UTC)
	gate, _ := newTestGate(t, func() time.Time { return early })

	_, err := gate.Check(context.Background(), simpleCart(10000), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "working hours")
}

func TestPolicyCloseKitchenBuffer(t *testing.T) {
	// close_kitchen_before=30，打烊21:00，20:35 已进入缓冲期
	late := time.Date(2024, 6, 5, 20, 35, 0, 0, time.UTC)
	gate, db := newTestGate(t, func() time.Time { return late })
	require.NoError(t, db.Model(&model.Setting{}).Where("id = 1").
		Update("close_kitchen_before", 30).Error)

	_, err := gate.Check(context.Background(), simpleCart(10000), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "30 minutes before")

	// 20:25 尚未进入缓冲期
	gate2, db2 := newTestGate(t, func() time.Time {
		return time.Date(2024, 6, 5, 20, 25, 0, 0, time.UTC)
	})
	require.NoError(t, db2.Model(&model.Setting{}).Where("id = 1").
		Update("close_kitchen_before", 30).Error)
	_, err = gate2.Check(context.Background(), simpleCart(10000), "")
	require.NoError(t, err)
}

func TestPolicyAmountBounds(t *testing.T) {
	gate, db := newTestGate(t, fixedNow)
	require.NoError(t, db.Model(&model.Setting{}).Where("id = 1").Updates(map[string]interface{}{
		"min_order_amount": 5000,
		"max_order_amount": 100000,
	}).Error)
	ctx := context.Background()

	_, err := gate.Check(ctx, simpleCart(4000), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Minimum order amount")

	_, err = gate.Check(ctx, simpleCart(150000), "")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Maximum order amount")

	_, err = gate.Check(ctx, simpleCart(50000), "")
	require.NoError(t, err)
}

func TestPolicyMinWaivedWithPromo(t *testing.T) {
	gate, db := newTestGate(t, fixedNow)
	require.NoError(t, db.Model(&model.Setting{}).Where("id = 1").
		Update("min_order_amount", 5000).Error)
	seedPromo(t, db, "SAVE10", 0.10, 10)
	ctx := context.Background()

	// 无促销码低于最小消费：拒绝
	_, err := gate.Check(ctx, simpleCart(4000), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// 带促销码时最小消费豁免
	res, err := gate.Check(ctx, simpleCart(4000), "SAVE10")
	require.NoError(t, err)
	require.NotNil(t, res.Promo)
	assert.Equal(t, 400, res.Discount)
}

func TestPolicyWeightBound(t *testing.T) {
	gate, db := newTestGate(t, fixedNow)
	require.NoError(t, db.Model(&model.Setting{}).Where("id = 1").
		Update("max_order_weight", 1000).Error)

	cart := simpleCart(10000)
	cart.TotalWeight = 1500
	_, err := gate.Check(context.Background(), cart, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Maximum order weight")
}

func TestPolicyInvalidPromo(t *testing.T) {
	gate, _ := newTestGate(t, fixedNow)

	_, err := gate.Check(context.Background(), simpleCart(10000), "NOPE")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "promo code")
}

func TestPolicyExhaustedPromoRejected(t *testing.T) {
	gate, db := newTestGate(t, fixedNow)
	promo := seedPromo(t, db, "GONE", 0.10, 1)
	require.NoError(t, db.Model(promo).Update("used_count", 1).Error)

	_, err := gate.Check(context.Background(), simpleCart(10000), "GONE")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPolicyPromoDiscountCapped(t *testing.T) {
	gate, db := newTestGate(t, fixedNow)
	maxDiscount := 500
	promo := seedPromo(t, db, "CAP", 0.50, 10)
	require.NoError(t, db.Model(promo).Update("max_discount", maxDiscount).Error)

	res, err := gate.Check(context.Background(), simpleCart(10000), "CAP")
	require.NoError(t, err)
	assert.Equal(t, 500, res.Discount)
}

func TestPolicyUnavailableIngredients(t *testing.T) {
	gate, _ := newTestGate(t, fixedNow)

	cart := simpleCart(10000)
	cart.Ingredients = map[uint]*model.Ingredient{
		1: {ID: 1, Name: "Spinach", IsAvailable: false, IsMenu: true},
		2: {ID: 2, Name: "Banana", IsAvailable: true, IsMenu: false},
		3: {ID: 3, Name: "Oats", IsAvailable: true, IsMenu: true},
	}
	_, err := gate.Check(context.Background(), cart, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// 违规配料全部列出，按名称排序
	assert.Contains(t, verr.Message, "Banana, Spinach")
	assert.NotContains(t, verr.Message, "Oats")
}
