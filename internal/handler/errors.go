package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
	"go.uber.org/zap"
)

var notFoundCodes = map[string]int{
	service.EntityUser:       response.CodeUserNotFound,
	service.EntityRole:       response.CodeRoleNotFound,
	service.EntityPermission: response.CodePermissionNotFound,
	service.EntityDepartment: response.CodeDeptNotFound,
	service.EntityPosition:   response.CodePositionNotFound,
}

var duplicateCodes = map[string]int{
	string(repository.FieldUserName): response.CodeUserExists,
	string(repository.FieldPhone):    response.CodePhoneExists,
	string(repository.FieldEmail):    response.CodeEmailExists,
}

// errorCode 领域错误转业务错误码
func errorCode(err error) int {
	de, ok := service.AsDomainError(err)
	if !ok {
		return response.CodeServerError
	}
	switch {
	case errors.Is(de.Kind, service.ErrNotFound):
		if code, ok := notFoundCodes[de.Entity]; ok {
			return code
		}
		return response.CodeInvalidRequest
	case errors.Is(de.Kind, service.ErrDuplicateIdentity):
		if de.Entity == service.EntityRole {
			return response.CodeRoleExists
		}
		if code, ok := duplicateCodes[de.Field]; ok {
			return code
		}
		return response.CodeUserExists
	case errors.Is(de.Kind, service.ErrValidationFailure):
		return response.CodeValidationFailed
	case errors.Is(de.Kind, service.ErrInvalidRequest):
		return response.CodeInvalidRequest
	case errors.Is(de.Kind, service.ErrDependencyFailure):
		return response.CodeDependencyFailed
	default:
		return response.CodeServerError
	}
}

// writeError 输出错误响应，领域错误带上具体消息
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	code := errorCode(err)
	if code == response.CodeServerError {
		logger.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Error(c, code)
		return
	}
	if code == response.CodeDependencyFailed {
		logger.Warn("依赖服务调用失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
		response.Error(c, code)
		return
	}
	de, _ := service.AsDomainError(err)
	response.ErrorWithMsg(c, code, de.Msg)
}

// bindError 请求参数解析失败
func bindError(c *gin.Context, err error) {
	response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
}
