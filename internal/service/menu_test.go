package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
)

func newTestMenu(t *testing.T, cache *redis.Client) (*MenuService, *testFixture) {
	t.Helper()
	db := setupTestDB(t)
	ing, product := seedCatalog(t, db)
	svc := NewMenuService(
		repository.NewProductRepository(db),
		repository.NewIngredientRepository(db),
		cache)
	return svc, &testFixture{db: db, ingredient: ing, product: product}
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestMenuWithoutCache(t *testing.T) {
	svc, fx := newTestMenu(t, nil)
	ctx := context.Background()

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, fx.product.ID, products[0].ID)

	ingredients, err := svc.Ingredients(ctx)
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
}

func TestMenuCacheHit(t *testing.T) {
	svc, fx := newTestMenu(t, testRedis(t))
	ctx := context.Background()

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	// 下架后缓存未失效，仍返回旧列表
	require.NoError(t, fx.db.Model(fx.product).Update("is_menu", false).Error)
	cached, err := svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)

	// 失效后回源
	svc.Invalidate(ctx)
	fresh, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestMenuOnlyListsMenuItems(t *testing.T) {
	svc, fx := newTestMenu(t, nil)

	// 非菜单商品（变体/自选快照）不会出现在目录里
	hidden := model.Product{
		Name: "Custom Meal", ProductType: model.ProductTypeDish,
		IsMenu: false, IsEnabled: true,
	}
	require.NoError(t, fx.db.Create(&hidden).Error)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, fx.product.ID, products[0].ID)
}
