package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/0xDyno/healthy-blend/pkg/response"
)

// CheckPromo 查询促销码是否可兑换（不预占）
// @Summary 查询促销码
// @Tags promo
// @Produce json
// @Param code path string true "促销码"
// @Success 200 {object} response.Messages
// @Failure 429 {object} response.Response
// @Router /promo/{code} [get]
func (h *Handler) CheckPromo(c *gin.Context) {
	quote, err := h.promo.Check(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	if !quote.IsActive {
		c.JSON(200, response.Messages{
			Messages: []response.Message{{Level: "info", Message: "It appears the promo code entered is not valid."}},
			Data:     quote,
		})
		return
	}
	c.JSON(200, response.Messages{
		Messages: []response.Message{{Level: "success", Message: "Good to go! The promo code is active."}},
		Data:     quote,
	})
}
