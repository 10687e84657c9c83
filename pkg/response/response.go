package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Message 带级别的用户可见提示（level: success/info/warning/error）
type Message struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Messages 校验类接口的响应结构，messages 面向用户展示
type Messages struct {
	Messages    []Message   `json:"messages"`
	RedirectURL string      `json:"redirect_url,omitempty"`
	Data        interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{Code: http.StatusForbidden, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: msg})
}

// InternalError 不向客户端泄露内部错误细节
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: "internal server error"})
}

// OK 带 messages 的成功响应
func OK(c *gin.Context, msgs []Message, redirectURL string) {
	c.JSON(http.StatusOK, Messages{Messages: msgs, RedirectURL: redirectURL})
}

// ValidationFail 业务校验失败，HTTP 400 + messages
func ValidationFail(c *gin.Context, msgs ...Message) {
	c.JSON(http.StatusBadRequest, Messages{Messages: msgs})
}

// TooManyRequests 限流响应，带 Retry-After 提示
func TooManyRequests(c *gin.Context, retryAfterSec int) {
	c.Header("Retry-After", strconv.Itoa(retryAfterSec))
	c.JSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Message: "too many requests, slow down"})
}
