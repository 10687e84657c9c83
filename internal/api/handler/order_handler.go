package handler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/api/middleware"
	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
	"github.com/0xDyno/healthy-blend/internal/service"
	"github.com/0xDyno/healthy-blend/pkg/response"
)

// LastOrder 当前用户最近一单
// @Summary 最近订单
// @Tags orders
// @Produce json
// @Success 200 {object} response.Response
// @Router /orders/last [get]
func (h *Handler) LastOrder(c *gin.Context) {
	order, err := h.orders.Last(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Success(c, nil)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, order)
}

// KitchenOrders 厨房队列（cooking 状态，按支付时间）
// @Summary 厨房队列
// @Tags orders
// @Produce json
// @Success 200 {object} response.Response
// @Router /orders/kitchen [get]
func (h *Handler) KitchenOrders(c *gin.Context) {
	orders, err := h.orders.Kitchen(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, orders)
}

// ListOrders 后台订单列表，支持过滤
// @Summary 订单列表
// @Tags orders
// @Produce json
// @Param status query string false "订单状态"
// @Param order_type query string false "订单类型"
// @Param payment_type query string false "支付方式"
// @Param date query string false "日期 YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	f := repository.OrderFilter{
		Status:      c.Query("status"),
		OrderType:   c.Query("order_type"),
		PaymentType: c.Query("payment_type"),
		PaymentID:   c.Query("payment_id"),
		SortAsc:     c.Query("sort_by") == "created_at_asc",
	}
	if v := c.Query("is_paid"); v != "" {
		b := v == "true"
		f.IsPaid = &b
	}
	if v := c.Query("is_refunded"); v != "" {
		b := v == "true"
		f.IsRefunded = &b
	}
	if v := c.Query("date"); v != "" {
		if d, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
			f.Date = &d
		}
	}

	orders, err := h.orders.List(c.Request.Context(), f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 订单详情
// @Summary 订单详情
// @Tags orders
// @Produce json
// @Param id path int true "订单 id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.orders.Get(c.Request.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c, fmt.Sprintf("order #%d not found", id))
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, order)
}

type orderUpdateRequest struct {
	OrderStatus *string `json:"order_status"`
	OrderType   *string `json:"order_type"`
	PaymentType *string `json:"payment_type"`
	PaymentID   *string `json:"payment_id"`
	IsPaid      *bool   `json:"is_paid"`
	IsRefunded  *bool   `json:"is_refunded"`
	PrivateNote *string `json:"private_note"`
}

// UpdateOrder 订单状态流转。厨房角色只能标记出餐完成。
// @Summary 更新订单
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "订单 id"
// @Param request body orderUpdateRequest true "变更"
// @Success 200 {object} response.Messages
// @Failure 400 {object} response.Messages
// @Router /orders/{id} [put]
func (h *Handler) UpdateOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	editorID := middleware.UserID(c)

	if c.GetString(middleware.CtxUserRole) == model.RoleKitchen {
		if err := h.orders.MarkReady(c.Request.Context(), uint(id), editorID); err != nil {
			h.orderUpdateError(c, err)
			return
		}
		response.OK(c, []response.Message{{Level: "success", Message: "Ready! Well done!"}}, "")
		return
	}

	var req orderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, response.Message{Level: "warning", Message: "Wrong request format."})
		return
	}

	upd := service.OrderUpdate{
		OrderStatus: req.OrderStatus,
		OrderType:   req.OrderType,
		PaymentType: req.PaymentType,
		PaymentID:   req.PaymentID,
		IsPaid:      req.IsPaid,
		IsRefunded:  req.IsRefunded,
		PrivateNote: req.PrivateNote,
	}
	if err := h.orders.Update(c.Request.Context(), uint(id), editorID, upd); err != nil {
		h.orderUpdateError(c, err)
		return
	}
	response.OK(c, []response.Message{{Level: "success", Message: fmt.Sprintf("Order #%d updated.", id)}}, "")
}

// DeleteOrder 删除订单，审计历史保留并打墓碑
// @Summary 删除订单
// @Tags orders
// @Produce json
// @Param id path int true "订单 id"
// @Success 200 {object} response.Messages
// @Router /orders/{id} [delete]
func (h *Handler) DeleteOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}
	if err := h.orders.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, fmt.Sprintf("order #%d not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, []response.Message{{Level: "success", Message: fmt.Sprintf("Order #%d deleted.", id)}}, "")
}

func (h *Handler) orderUpdateError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		response.ValidationFail(c, response.Message{Level: verr.Level, Message: verr.Message})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c, "order not found")
		return
	}
	response.InternalError(c, err)
}
