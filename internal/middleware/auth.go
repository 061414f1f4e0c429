package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
)

// 上下文键
const (
	ContextUserID   = "user_id"
	ContextUserName = "username"
)

// OperatorAuth 操作人认证中间件
// 令牌由外部登录服务签发，这里只校验并取出操作人 ID
func OperatorAuth(verifier service.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithMsg(c, response.CodeInvalidToken, "未提供认证令牌")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithMsg(c, response.CodeInvalidToken, "认证令牌格式错误")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				response.ErrorWithMsg(c, response.CodeInvalidToken, "令牌已过期")
			default:
				response.Error(c, response.CodeInvalidToken)
			}
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserName, claims.UserName)

		c.Next()
	}
}

// OperatorID 获取当前操作人 ID，未认证时返回 0
func OperatorID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}
