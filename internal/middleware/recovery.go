package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
	"go.uber.org/zap"
)

// Recovery 捕获 panic 并返回统一的服务器错误
// 日志带上请求 ID 与操作人，便于追溯是哪次后台操作触发
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			fields := []zap.Field{
				zap.String("request_id", c.GetString("request_id")),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
				zap.ByteString("stack", debug.Stack()),
			}
			if operatorID := OperatorID(c); operatorID != 0 {
				fields = append(fields, zap.Int64("operator_id", operatorID))
			}
			logger.Error("服务器内部错误", fields...)

			// 已开始写响应时只能中断，不再覆盖状态码
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
				Code: response.CodeServerError,
				Msg:  "服务器内部错误，请稍后重试",
			})
		}()
		c.Next()
	}
}
