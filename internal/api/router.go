package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/0xDyno/healthy-blend/config"
	_ "github.com/0xDyno/healthy-blend/docs"
	"github.com/0xDyno/healthy-blend/internal/api/handler"
	"github.com/0xDyno/healthy-blend/internal/api/middleware"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/service"
)

// NewRouter 组装 HTTP 路由。
// 结算与促销码查询单独限流，后台接口按角色白名单放行。
func NewRouter(cfg *config.Config, h *handler.Handler, auth *service.AuthService,
	limiter *middleware.RateLimiter) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(otelgin.Middleware(cfg.Trace.Service))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.Login)

	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(auth))
	{
		authed.POST("/checkout",
			limiter.Limit("checkout", cfg.RateLimit.CheckoutPerMinute), h.Checkout)
		authed.GET("/promo/:code",
			limiter.Limit("promo", cfg.RateLimit.PromoPerMinute), h.CheckPromo)
		authed.GET("/menu/products",
			limiter.Limit("api", cfg.RateLimit.APIPerMinute), h.MenuProducts)
		authed.GET("/menu/ingredients",
			limiter.Limit("api", cfg.RateLimit.APIPerMinute), h.MenuIngredients)
		authed.GET("/orders/last",
			limiter.Limit("api", cfg.RateLimit.APIPerMinute), h.LastOrder)
	}

	kitchen := authed.Group("")
	kitchen.Use(middleware.RequireRoles(model.RoleKitchen, model.RoleManager,
		model.RoleAdministrator, model.RoleOwner))
	{
		kitchen.GET("/orders/kitchen", h.KitchenOrders)
		kitchen.PUT("/orders/:id", h.UpdateOrder)
	}

	staff := authed.Group("")
	staff.Use(middleware.RequireRoles(model.RoleManager, model.RoleAdministrator, model.RoleOwner))
	{
		staff.GET("/orders", h.ListOrders)
		staff.GET("/orders/:id", h.GetOrder)
		staff.POST("/catalog/ingredients/:id/toggle", h.ToggleIngredient)
	}

	// 删除订单破坏性最强，只留给 owner
	owner := authed.Group("")
	owner.Use(middleware.RequireRoles(model.RoleOwner))
	{
		owner.DELETE("/orders/:id", h.DeleteOrder)
	}

	// 目录与促销码的写入只开放给管理员
	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(model.RoleAdministrator, model.RoleOwner))
	{
		admin.POST("/catalog/ingredients", h.SaveIngredient)
		admin.POST("/catalog/products", h.SaveProduct)
		admin.GET("/catalog/promos", h.ListPromos)
		admin.POST("/catalog/promos", h.CreatePromo)
		admin.PUT("/catalog/promos/:id", h.UpdatePromo)
	}

	return r
}
