package handler

import (
	"github.com/0xDyno/healthy-blend/config"
	"github.com/0xDyno/healthy-blend/internal/service"
)

// Handler API 层的依赖集合
type Handler struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	menu     *service.MenuService
	promo    *service.PromoService
	catalog  *service.CatalogService
	auth     *service.AuthService
	cfg      config.CheckoutConfig
}

func New(checkout *service.CheckoutService, orders *service.OrderService,
	menu *service.MenuService, promo *service.PromoService,
	catalog *service.CatalogService, auth *service.AuthService,
	cfg config.CheckoutConfig) *Handler {
	return &Handler{
		checkout: checkout,
		orders:   orders,
		menu:     menu,
		promo:    promo,
		catalog:  catalog,
		auth:     auth,
		cfg:      cfg,
	}
}
