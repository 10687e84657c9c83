package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/api/middleware"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/service"
	"github.com/0xDyno/healthy-blend/pkg/response"
)

// SaveIngredient 创建/更新配料
// @Summary 保存配料
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body model.Ingredient true "配料"
// @Success 200 {object} response.Messages
// @Failure 400 {object} response.Messages
// @Router /catalog/ingredients [post]
func (h *Handler) SaveIngredient(c *gin.Context) {
	var ing model.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		response.ValidationFail(c, response.Message{Level: "warning", Message: "Wrong request format."})
		return
	}
	if err := h.catalog.SaveIngredient(c.Request.Context(), &ing); err != nil {
		h.catalogError(c, err)
		return
	}
	response.Success(c, ing)
}

// ToggleIngredient 切换配料在售状态
// @Summary 切换配料在售
// @Tags catalog
// @Produce json
// @Param id path int true "配料 id"
// @Success 200 {object} response.Response
// @Router /catalog/ingredients/{id}/toggle [post]
func (h *Handler) ToggleIngredient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid ingredient id")
		return
	}
	ing, err := h.catalog.ToggleIngredientAvailability(c.Request.Context(), uint(id))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	response.Success(c, ing)
}

// SaveProduct 创建/更新官方商品
// @Summary 保存商品
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body model.Product true "商品"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Messages
// @Router /catalog/products [post]
func (h *Handler) SaveProduct(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		response.ValidationFail(c, response.Message{Level: "warning", Message: "Wrong request format."})
		return
	}
	if err := h.catalog.SaveProduct(c.Request.Context(), &p); err != nil {
		h.catalogError(c, err)
		return
	}
	response.Success(c, p)
}

// ListPromos 促销码后台列表
// @Summary 促销码列表
// @Tags promo
// @Produce json
// @Success 200 {object} response.Response
// @Router /catalog/promos [get]
func (h *Handler) ListPromos(c *gin.Context) {
	promos, err := h.promo.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, promos)
}

// CreatePromo 新建促销码
// @Summary 新建促销码
// @Tags promo
// @Accept json
// @Produce json
// @Param request body model.Promo true "促销码"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Messages
// @Router /catalog/promos [post]
func (h *Handler) CreatePromo(c *gin.Context) {
	var promo model.Promo
	if err := c.ShouldBindJSON(&promo); err != nil {
		response.ValidationFail(c, response.Message{Level: "warning", Message: "Wrong request format."})
		return
	}
	// 创建人来自当前登录态，不信任请求体
	if uid := middleware.UserID(c); uid != 0 {
		promo.CreatorID = &uid
	}
	if err := h.promo.Create(c.Request.Context(), &promo); err != nil {
		h.catalogError(c, err)
		return
	}
	response.Success(c, promo)
}

// UpdatePromo 修改促销码
// @Summary 修改促销码
// @Tags promo
// @Accept json
// @Produce json
// @Param id path int true "促销码 id"
// @Param request body model.Promo true "促销码"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Messages
// @Router /catalog/promos/{id} [put]
func (h *Handler) UpdatePromo(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid promo id")
		return
	}
	existing, err := h.promo.Get(c.Request.Context(), uint(id))
	if err != nil {
		h.catalogError(c, err)
		return
	}

	var updated model.Promo
	if err := c.ShouldBindJSON(&updated); err != nil {
		response.ValidationFail(c, response.Message{Level: "warning", Message: "Wrong request format."})
		return
	}
	updated.ID = existing.ID
	updated.UsedCount = existing.UsedCount
	updated.CreatorID = existing.CreatorID

	if err := h.promo.Update(c.Request.Context(), existing, &updated); err != nil {
		h.catalogError(c, err)
		return
	}
	response.Success(c, updated)
}

func (h *Handler) catalogError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		response.ValidationFail(c, response.Message{Level: verr.Level, Message: verr.Message})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c, "not found")
		return
	}
	response.InternalError(c, err)
}
