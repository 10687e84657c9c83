package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/0xDyno/healthy-blend/pkg/logger"
	"github.com/0xDyno/healthy-blend/pkg/response"
)

// Recovery panic 兜底：上报 sentry、打日志，对外只给通用 500，
// 不向客户端泄露内部细节
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				sentry.CurrentHub().Recover(r)
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path))
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, response.Response{
						Code:    http.StatusInternalServerError,
						Message: "internal server error",
					})
				}
				c.Abort()
			}
		}()
		c.Next()

		// handler 里挂到 context 的错误统一上报
		for _, ginErr := range c.Errors {
			sentry.CaptureException(fmt.Errorf("%s %s: %w", c.Request.Method, c.Request.URL.Path, ginErr.Err))
			logger.Error("request error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(ginErr.Err))
		}
	}
}
