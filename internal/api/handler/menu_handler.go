package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/0xDyno/healthy-blend/pkg/response"
)

// MenuProducts 菜单商品列表
// @Summary 菜单商品
// @Tags menu
// @Produce json
// @Success 200 {object} response.Response
// @Router /menu/products [get]
func (h *Handler) MenuProducts(c *gin.Context) {
	products, err := h.menu.Products(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, products)
}

// MenuIngredients 自选配料列表
// @Summary 自选配料
// @Tags menu
// @Produce json
// @Success 200 {object} response.Response
// @Router /menu/ingredients [get]
func (h *Handler) MenuIngredients(c *gin.Context) {
	ingredients, err := h.menu.Ingredients(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, ingredients)
}
