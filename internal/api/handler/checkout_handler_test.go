package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/api/middleware"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
	"github.com/0xDyno/healthy-blend/internal/service"
	"github.com/0xDyno/healthy-blend/pkg/response"
)

var handlerTestNow = time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

type handlerFixture struct {
	router  *gin.Engine
	db      *gorm.DB
	user    *model.User
	product *model.Product
}

// 结算相关路由的端到端装配，身份通过测试中间件注入
func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Ingredient{}, &model.Product{}, &model.ProductIngredient{},
		&model.Promo{}, &model.PromoUsage{}, &model.Order{}, &model.OrderProduct{},
		&model.OrderHistory{}, &model.Setting{}, &model.DaySetting{},
	))

	require.NoError(t, db.Create(&model.Setting{
		ID: 1, Tax: 0.10, Service: 0.05, CanOrder: true, CloseKitchenBefore: 20,
	}).Error)
	for day := 0; day < 7; day++ {
		require.NoError(t, db.Create(&model.DaySetting{
			Day: day, IsOpen: true, OpenHours: "10:00", CloseHours: "21:00",
		}).Error)
	}

	ing := model.Ingredient{
		Name: "Oats", MinOrder: 30, MaxOrder: 150, IsAvailable: true, IsMenu: true,
		PurchasePrice: 20, PriceMultiplier: 3,
		NutritionalValue: model.NutritionalValue{Calories: 389},
	}
	require.NoError(t, db.Create(&ing).Error)

	product := model.Product{
		Name: "Morning Oat Bowl", ProductType: model.ProductTypeDish,
		IsMenu: true, IsOfficial: true, IsEnabled: true, IsAvailable: true,
		Price: 2000, PriceMultiplier: 3, Weight: 100,
		NutritionalValue: model.NutritionalValue{Calories: 600},
		Ingredients:      []model.ProductIngredient{{IngredientID: ing.ID, WeightGrams: 100}},
	}
	require.NoError(t, db.Create(&product).Error)

	user := model.User{Username: "guest", Password: "x", Role: model.RoleCustomer, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	products := repository.NewProductRepository(db)
	ingredients := repository.NewIngredientRepository(db)
	settings := repository.NewSettingRepository(db)
	promos := repository.NewPromoRepository(db)
	orders := repository.NewOrderRepository(db)
	history := repository.NewHistoryRepository(db)
	cfg := config.CheckoutConfig{PriceTolerancePercent: 0.5, WaiveMinWithPromo: true, RedirectURL: "/order/"}
	now := func() time.Time { return handlerTestNow }

	checkoutSvc := service.NewCheckoutService(db,
		service.NewCartValidator(products, ingredients, settings, cfg),
		service.NewPolicyGate(settings, promos, cfg, now),
		products, orders, promos, history, cfg, now)
	orderSvc := service.NewOrderService(db, orders, history, settings, now)
	menuSvc := service.NewMenuService(products, ingredients, nil)
	promoSvc := service.NewPromoService(promos, now)
	catalogSvc := service.NewCatalogService(db, products, ingredients, menuSvc)
	authSvc := service.NewAuthService(repository.NewUserRepository(db), config.AuthConfig{
		JWTSecret: "test", TokenTTL: time.Hour,
	})

	h := New(checkoutSvc, orderSvc, menuSvc, promoSvc, catalogSvc, authSvc, cfg)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxUserID, user.ID)
		c.Set(middleware.CtxUserRole, user.Role)
	})
	r.POST("/checkout", h.Checkout)
	r.GET("/promo/:code", h.CheckPromo)
	r.GET("/menu/products", h.MenuProducts)

	return &handlerFixture{router: r, db: db, user: &user, product: &product}
}

func (fx *handlerFixture) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	fx.router.ServeHTTP(w, req)
	return w
}

func TestCheckoutEndpointSuccess(t *testing.T) {
	fx := newHandlerFixture(t)

	w := fx.post(t, "/checkout", service.CheckoutRequest{
		OfficialMeals: []service.OfficialMealLine{
			{ID: fx.product.ID, Amount: 2, Calories: 600, Price: 6000},
		},
		PaymentType: model.PaymentTypeCash,
		BasePrice:   12000,
		FinalPrice:  13860,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Messages
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "success", resp.Messages[0].Level)
	assert.Equal(t, "/order/", resp.RedirectURL)

	var n int64
	require.NoError(t, fx.db.Model(&model.Order{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCheckoutEndpointValidationFailure(t *testing.T) {
	fx := newHandlerFixture(t)

	// 价格明显不符
	w := fx.post(t, "/checkout", service.CheckoutRequest{
		OfficialMeals: []service.OfficialMealLine{
			{ID: fx.product.ID, Amount: 2, Calories: 600, Price: 1000},
		},
		PaymentType: model.PaymentTypeCash,
		BasePrice:   2000,
		FinalPrice:  2310,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp response.Messages
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "warning", resp.Messages[0].Level)

	var n int64
	require.NoError(t, fx.db.Model(&model.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckoutEndpointMalformedBody(t *testing.T) {
	fx := newHandlerFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	fx.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutEndpointRejectsBadPaymentType(t *testing.T) {
	fx := newHandlerFixture(t)

	// binding oneof=cash card qr
	w := fx.post(t, "/checkout", map[string]interface{}{
		"official_meals": []map[string]interface{}{
			{"id": fx.product.ID, "amount": 1, "calories": 600, "price": 6000},
		},
		"payment_type": "crypto",
		"base_price":   6000,
		"final_price":  6930,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckPromoEndpoint(t *testing.T) {
	fx := newHandlerFixture(t)
	require.NoError(t, fx.db.Create(&model.Promo{
		PromoCode: "SAVE10", Discount: 0.10, IsEnabled: true,
		ActiveFrom: handlerTestNow.Add(-time.Hour), ActiveUntil: handlerTestNow.Add(time.Hour),
		UsageLimit: 10,
	}).Error)

	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/promo/SAVE10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp response.Messages
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Messages[0].Level)

	w = httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/promo/NOPE", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "info", resp.Messages[0].Level)
}

func TestMenuEndpoint(t *testing.T) {
	fx := newHandlerFixture(t)

	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/menu/products", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "ok", resp.Message)
}
