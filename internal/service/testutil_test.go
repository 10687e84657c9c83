package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/model"
)

// 测试用的固定时刻：周三 12:00，营业时间 10:00-21:00 之内
var testNow = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		PriceTolerancePercent: 0.5,
		WaiveMinWithPromo:     true,
		RedirectURL:           "/order/",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	migrateAll(t, db)
	return db
}

// setupFileDB 文件库，供并发用例使用：连接池里的事务真正并行，
// 写事务以 immediate 锁串行化，busy_timeout 兜底重试
func setupFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	migrateAll(t, db)
	return db
}

func migrateAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Ingredient{},
		&model.Product{},
		&model.ProductIngredient{},
		&model.Promo{},
		&model.PromoUsage{},
		&model.Order{},
		&model.OrderProduct{},
		&model.OrderHistory{},
		&model.Setting{},
		&model.DaySetting{},
	))
}

// testFixture 常用测试句柄集合
type testFixture struct {
	db         *gorm.DB
	ingredient *model.Ingredient
	product    *model.Product
}

// seedCatalog 最小可下单目录：配置、全周营业、一个配料、一个官方菜品
func seedCatalog(t *testing.T, db *gorm.DB) (*model.Ingredient, *model.Product) {
	t.Helper()

	setting := model.Setting{
		ID:                 1,
		Tax:                0.10,
		Service:            0.05,
		CanOrder:           true,
		MinOrderAmount:     0,
		MaxOrderAmount:     0,
		MinBlendWeight:     200,
		CloseKitchenBefore: 20,
	}
	require.NoError(t, db.Create(&setting).Error)

	for day := 0; day < 7; day++ {
		require.NoError(t, db.Create(&model.DaySetting{
			Day: day, IsOpen: true, OpenHours: "10:00", CloseHours: "21:00",
		}).Error)
	}

	ing := model.Ingredient{
		Name:             "Oats",
		MinOrder:         30,
		MaxOrder:         150,
		IsAvailable:      true,
		IsMenu:           true,
		IsDishIngredient: true,
		PurchasePrice:    20,
		PriceMultiplier:  3,
		NutritionalValue: model.NutritionalValue{
			Calories: 389, Proteins: 16.9, Fats: 6.9, Carbohydrates: 66.3,
		},
	}
	require.NoError(t, db.Create(&ing).Error)

	product := model.Product{
		Name:            "Morning Oat Bowl",
		ProductType:     model.ProductTypeDish,
		IsMenu:          true,
		IsOfficial:      true,
		IsEnabled:       true,
		IsAvailable:     true,
		Price:           2000, // 100g × 20/g
		PriceMultiplier: 3,
		Weight:          100,
		NutritionalValue: model.NutritionalValue{
			Calories: 600, Proteins: 20, Fats: 10, Carbohydrates: 80,
		},
		Ingredients: []model.ProductIngredient{
			{IngredientID: ing.ID, WeightGrams: 100},
		},
	}
	require.NoError(t, db.Create(&product).Error)

	return &ing, &product
}

func seedUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()
	u := model.User{Username: "test-" + role, Password: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func seedPromo(t *testing.T, db *gorm.DB, code string, discount float64, limit int) *model.Promo {
	t.Helper()
	p := model.Promo{
		PromoCode:   code,
		Discount:    discount,
		IsEnabled:   true,
		ActiveFrom:  testNow.Add(-time.Hour),
		ActiveUntil: testNow.Add(time.Hour),
		UsageLimit:  limit,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}
