package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/0xDyno/healthy-blend/internal/api/middleware"
	"github.com/0xDyno/healthy-blend/internal/service"
	"github.com/0xDyno/healthy-blend/pkg/response"
)

// Checkout 提交购物车结算
// @Summary 结算下单
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body service.CheckoutRequest true "购物车"
// @Success 200 {object} response.Messages
// @Failure 400 {object} response.Messages
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /checkout [post]
func (h *Handler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, response.Message{Level: "warning", Message: "Wrong request format."})
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			response.ValidationFail(c, response.Message{Level: verr.Level, Message: verr.Message})
			return
		}
		response.InternalError(c, err)
		return
	}

	response.OK(c, []response.Message{
		{Level: "success", Message: fmt.Sprintf("Order #%d created. Thank you!", order.ID)},
	}, h.cfg.RedirectURL)
}
