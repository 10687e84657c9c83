package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/0xDyno/healthy-blend/internal/service"
	"github.com/0xDyno/healthy-blend/pkg/response"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login 口令登录，签发 JWT
// @Summary 登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "凭证"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Messages
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, response.Message{Level: "warning", Message: "Wrong request format."})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			response.ValidationFail(c, response.Message{Level: verr.Level, Message: verr.Message})
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, loginResponse{Token: token, Role: user.Role})
}
