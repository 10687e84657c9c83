package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

func newTestPromoService(t *testing.T) (*PromoService, *testFixture) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewPromoService(repository.NewPromoRepository(db), fixedNow)
	return svc, &testFixture{db: db}
}

func TestPromoCheckActive(t *testing.T) {
	svc, fx := newTestPromoService(t)
	seedPromo(t, fx.db, "SAVE10", 0.10, 10)

	quote, err := svc.Check(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.True(t, quote.IsActive)
	assert.Equal(t, 0.10, quote.Discount)
}

func TestPromoCheckUnknownCode(t *testing.T) {
	svc, _ := newTestPromoService(t)

	quote, err := svc.Check(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, quote.IsActive)
	assert.Zero(t, quote.Discount)
}

func TestPromoCheckDoesNotReserve(t *testing.T) {
	svc, fx := newTestPromoService(t)
	promo := seedPromo(t, fx.db, "SAVE10", 0.10, 10)

	for i := 0; i < 5; i++ {
		_, err := svc.Check(context.Background(), "SAVE10")
		require.NoError(t, err)
	}

	var reloaded model.Promo
	require.NoError(t, fx.db.First(&reloaded, promo.ID).Error)
	assert.Zero(t, reloaded.UsedCount)
}

func TestPromoCheckRespectsWindowAndLimit(t *testing.T) {
	svc, fx := newTestPromoService(t)

	expired := model.Promo{
		PromoCode: "EXPIRED", Discount: 0.10, IsEnabled: true,
		ActiveFrom: testNow.Add(-2 * time.Hour), ActiveUntil: testNow.Add(-time.Hour),
		UsageLimit: 10,
	}
	require.NoError(t, fx.db.Create(&expired).Error)

	exhausted := model.Promo{
		PromoCode: "USED", Discount: 0.10, IsEnabled: true,
		ActiveFrom: testNow.Add(-time.Hour), ActiveUntil: testNow.Add(time.Hour),
		UsageLimit: 1, UsedCount: 1,
	}
	require.NoError(t, fx.db.Create(&exhausted).Error)

	disabled := model.Promo{
		PromoCode: "OFF", Discount: 0.10, IsEnabled: false,
		ActiveFrom: testNow.Add(-time.Hour), ActiveUntil: testNow.Add(time.Hour),
		UsageLimit: 10,
	}
	require.NoError(t, fx.db.Create(&disabled).Error)

	for _, code := range []string{"EXPIRED", "USED", "OFF"} {
		quote, err := svc.Check(context.Background(), code)
		require.NoError(t, err, code)
		assert.False(t, quote.IsActive, code)
	}
}

func TestPromoCreatedDisabledStaysDisabled(t *testing.T) {
	svc, fx := newTestPromoService(t)
	repo := repository.NewPromoRepository(fx.db)
	ctx := context.Background()

	// 停用状态建码：落库后必须仍是停用，不能被列默认值翻成启用
	require.NoError(t, repo.Create(ctx, &model.Promo{
		PromoCode: "OFFLINE", Discount: 0.10, IsEnabled: false,
		ActiveFrom: testNow.Add(-time.Hour), ActiveUntil: testNow.Add(time.Hour),
		UsageLimit: 10,
	}))

	var reloaded model.Promo
	require.NoError(t, fx.db.Where("promo_code = ?", "OFFLINE").First(&reloaded).Error)
	assert.False(t, reloaded.IsEnabled)

	found, err := repo.GetActiveByCode(ctx, "OFFLINE", testNow)
	require.NoError(t, err)
	assert.Nil(t, found)

	quote, err := svc.Check(ctx, "OFFLINE")
	require.NoError(t, err)
	assert.False(t, quote.IsActive)
}

func TestPromoCreateValidation(t *testing.T) {
	svc, _ := newTestPromoService(t)
	ctx := context.Background()

	err := svc.Create(ctx, &model.Promo{PromoCode: "BAD", Discount: 1.5, UsageLimit: 10})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	err = svc.Create(ctx, &model.Promo{PromoCode: "BAD2", Discount: 0.5, UsageLimit: 0})
	require.ErrorAs(t, err, &verr)

	require.NoError(t, svc.Create(ctx, &model.Promo{
		PromoCode: "GOOD", Discount: 0.5, UsageLimit: 10,
		ActiveFrom: testNow, ActiveUntil: testNow.Add(time.Hour),
	}))
}

func TestPromoFinishedNotEditable(t *testing.T) {
	svc, fx := newTestPromoService(t)
	promo := seedPromo(t, fx.db, "DONE", 0.10, 10)
	require.NoError(t, fx.db.Model(promo).Update("is_finished", true).Error)

	existing, err := svc.Get(context.Background(), promo.ID)
	require.NoError(t, err)

	updated := *existing
	updated.Discount = 0.2
	err = svc.Update(context.Background(), existing, &updated)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Finished")
}
