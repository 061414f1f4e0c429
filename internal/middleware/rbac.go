// Package middleware 中间件
package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
	"go.uber.org/zap"
)

// PermissionLister 按用户查询权限代码
type PermissionLister interface {
	ListCodesByUser(ctx context.Context, userID int64) ([]string, error)
}

// RequirePermission 权限检查中间件
// 当前操作人经由启用角色拥有 code 权限时放行
func RequirePermission(perms PermissionLister, logger *zap.Logger, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := OperatorID(c)
		if userID == 0 {
			response.Error(c, response.CodeInvalidToken)
			c.Abort()
			return
		}

		codes, err := loadCodes(c, perms, userID)
		if err != nil {
			logger.Error("查询操作人权限失败", zap.Int64("user_id", userID), zap.Error(err))
			response.Error(c, response.CodeServerError)
			c.Abort()
			return
		}

		if !slices.Contains(codes, code) {
			response.ErrorWithMsg(c, response.CodeForbidden, "没有权限执行此操作")
			c.Abort()
			return
		}

		c.Next()
	}
}

// loadCodes 同一请求内只查询一次权限代码
func loadCodes(c *gin.Context, perms PermissionLister, userID int64) ([]string, error) {
	if v, ok := c.Get("permissions"); ok {
		if codes, ok := v.([]string); ok {
			return codes, nil
		}
	}
	codes, err := perms.ListCodesByUser(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	c.Set("permissions", codes)
	return codes, nil
}
