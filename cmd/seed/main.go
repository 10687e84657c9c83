package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
	"github.com/0xDyno/healthy-blend/internal/service"
	"github.com/0xDyno/healthy-blend/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// 开发/演示环境的初始数据：全局配置、营业时间、账号、配料与官方菜品。
// 幂等：已存在的记录跳过。
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	// 全局配置单行
	setting := model.Setting{
		ID:                 1,
		Tax:                0.10,
		Service:            0.05,
		CanOrder:           true,
		MinOrderAmount:     10000,
		MaxOrderAmount:     5000000,
		MaxOrderWeight:     15000,
		MinBlendWeight:     200,
		CloseKitchenBefore: 20,
	}
	_ = db.Where("id = 1").FirstOrCreate(&setting).Error

	// 周一到周日的营业时间
	for day := 0; day < 7; day++ {
		ds := model.DaySetting{Day: day, IsOpen: true, OpenHours: "10:00", CloseHours: "21:00"}
		_ = db.Where("day = ?", day).FirstOrCreate(&ds).Error
	}

	// 账号：每个角色一个
	users := repository.NewUserRepository(db)
	for _, u := range []struct {
		username, password, role string
	}{
		{"owner", "owner", model.RoleOwner},
		{"admin", "admin", model.RoleAdministrator},
		{"manager", "manager", model.RoleManager},
		{"kitchen", "kitchen", model.RoleKitchen},
		{"table1", "table1", model.RoleTable},
	} {
		if _, err := users.GetByUsername(ctx, u.username); err == nil {
			continue
		}
		hash := must(service.HashPassword(u.password))
		_ = users.Create(ctx, &model.User{Username: u.username, Password: hash, Role: u.role, IsActive: true})
	}

	// 配料（进价每克，营养按每100g），统一上架
	ingredients := []model.Ingredient{
		{Name: "Oats", IngredientType: model.IngredientTypeBase, MinOrder: 30, MaxOrder: 150, Step: 10,
			PurchasePrice: 20, PriceMultiplier: 3,
			NutritionalValue: model.NutritionalValue{Calories: 389, Proteins: 16.9, Fats: 6.9, Carbohydrates: 66.3, Fiber: 10.6}},
		{Name: "Banana", IngredientType: model.IngredientTypeFruit, MinOrder: 50, MaxOrder: 200, Step: 25,
			PurchasePrice: 10, PriceMultiplier: 3,
			NutritionalValue: model.NutritionalValue{Calories: 89, Proteins: 1.1, Fats: 0.3, Carbohydrates: 22.8, Sugars: 12.2}},
		{Name: "Greek Yogurt", IngredientType: model.IngredientTypeDairy, MinOrder: 50, MaxOrder: 250, Step: 25,
			PurchasePrice: 25, PriceMultiplier: 3,
			NutritionalValue: model.NutritionalValue{Calories: 59, Proteins: 10.0, Fats: 0.4, Carbohydrates: 3.6}},
		{Name: "Chicken Breast", IngredientType: model.IngredientTypeProtein, MinOrder: 80, MaxOrder: 300, Step: 20,
			PurchasePrice: 45, PriceMultiplier: 3,
			NutritionalValue: model.NutritionalValue{Calories: 165, Proteins: 31.0, Fats: 3.6}},
		{Name: "Spinach", IngredientType: model.IngredientTypeVegetable, MinOrder: 20, MaxOrder: 120, Step: 10,
			PurchasePrice: 15, PriceMultiplier: 3,
			NutritionalValue: model.NutritionalValue{Calories: 23, Proteins: 2.9, Fats: 0.4, Carbohydrates: 3.6, Iron: 2.7}},
		{Name: "Honey", IngredientType: model.IngredientTypeTopping, MinOrder: 10, MaxOrder: 50, Step: 5,
			PurchasePrice: 30, PriceMultiplier: 3,
			NutritionalValue: model.NutritionalValue{Calories: 304, Carbohydrates: 82.4, Sugars: 82.1}},
	}
	byName := map[string]uint{}
	for i := range ingredients {
		ing := &ingredients[i]
		ing.IsAvailable = true
		ing.IsMenu = true
		ing.IsDishIngredient = true
		_ = db.Where("name = ?", ing.Name).FirstOrCreate(ing).Error
		byName[ing.Name] = ing.ID
	}

	// 官方菜品：组成、重量、营养与底价由目录服务重算
	products := repository.NewProductRepository(db)
	catalog := service.NewCatalogService(db, products,
		repository.NewIngredientRepository(db),
		service.NewMenuService(products, repository.NewIngredientRepository(db), nil))

	official := []model.Product{
		{Name: "Morning Oat Bowl", ProductType: model.ProductTypeDish,
			IsMenu: true, IsOfficial: true, IsEnabled: true, IsAvailable: true, PriceMultiplier: 3,
			Ingredients: []model.ProductIngredient{
				{IngredientID: byName["Oats"], WeightGrams: 80},
				{IngredientID: byName["Banana"], WeightGrams: 100},
				{IngredientID: byName["Honey"], WeightGrams: 15},
			}},
		{Name: "Protein Power Salad", ProductType: model.ProductTypeDish,
			IsMenu: true, IsOfficial: true, IsEnabled: true, IsAvailable: true, PriceMultiplier: 3,
			Ingredients: []model.ProductIngredient{
				{IngredientID: byName["Chicken Breast"], WeightGrams: 150},
				{IngredientID: byName["Spinach"], WeightGrams: 60},
			}},
		{Name: "Yogurt Smoothie", ProductType: model.ProductTypeDrink,
			IsMenu: true, IsOfficial: true, IsEnabled: true, IsAvailable: true, PriceMultiplier: 3,
			Ingredients: []model.ProductIngredient{
				{IngredientID: byName["Greek Yogurt"], WeightGrams: 200},
				{IngredientID: byName["Banana"], WeightGrams: 100},
			}},
	}
	for i := range official {
		var count int64
		db.Model(&model.Product{}).Where("name = ?", official[i].Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := catalog.SaveProduct(ctx, &official[i]); err != nil {
			panic(err)
		}
	}

	// 演示促销码
	promos := repository.NewPromoRepository(db)
	code := "WELCOME-" + uuid.NewString()[:8]
	maxDiscount := 50000
	if err := promos.Create(ctx, &model.Promo{
		PromoCode:   code,
		Discount:    0.10,
		MaxDiscount: &maxDiscount,
		IsEnabled:   true,
		ActiveFrom:  time.Now(),
		ActiveUntil: time.Now().AddDate(0, 1, 0),
		UsageLimit:  100,
	}); err != nil {
		panic(err)
	}

	fmt.Printf("seeded: %d ingredients, %d products, promo %s\n", len(ingredients), len(official), code)
}
