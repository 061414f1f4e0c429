// Package handler HTTP 处理器
package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/internal/lookup"
	"github.com/pu-ac-cn/rbac-backend/internal/middleware"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UserHandler 员工管理处理器
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler 创建员工管理处理器
func NewUserHandler(userSvc service.UserService, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{userService: userSvc, logger: logger}
}

// CreateUser 新增员工
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req, middleware.OperatorID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "新增员工成功", gin.H{"id": user.ID})
}

// UpdateUser 更新员工信息
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ID = id

	if err := h.userService.Update(c.Request.Context(), &req, middleware.OperatorID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "更新员工信息成功", nil)
}

// DeleteUser 删除员工
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "删除员工成功", nil)
}

// GetUser 获取员工详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 员工分页查询
// GET /api/v1/users?search_key=&org_id=&org_type=&page=&page_size=
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", 20)
	if !ok {
		return
	}
	orgID, ok := optionalQueryID(c, "org_id")
	if !ok {
		return
	}

	input := &service.QueryUserInput{
		SearchKey: c.Query("search_key"),
		OrgType:   lookup.OrgType(c.Query("org_type")),
		Page:      page,
		PageSize:  pageSize,
	}
	if orgID != nil {
		input.OrgID = *orgID
	}

	result, err := h.userService.Query(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}

// UpdateUserStatus 激活/冻结账号
// PUT /api/v1/users/:id/status
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateUserStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ID = id

	if err := h.userService.UpdateStatus(c.Request.Context(), &req, middleware.OperatorID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if *req.Status == model.StatusValid {
		response.SuccessWithMsg(c, "账号激活成功", nil)
		return
	}
	response.SuccessWithMsg(c, "账号冻结成功", nil)
}

// ResetPassword 重置员工密码
// PUT /api/v1/users/:id/password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.ResetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ID = id

	if err := h.userService.ResetPassword(c.Request.Context(), &req, middleware.OperatorID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "重置该员工密码成功", nil)
}

// GetDepartmentUsers 部门员工
// GET /api/v1/departments/:id/users
func (h *UserHandler) GetDepartmentUsers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	users, err := h.userService.GetDepartmentUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, users)
}

// GetCorporationUsers 公司员工
// GET /api/v1/corporations/:id/users
func (h *UserHandler) GetCorporationUsers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	users, err := h.userService.GetCorporationUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, users)
}

// QueryUserRoles 可分配角色
// GET /api/v1/user-roles?user_id=&dept_id=
func (h *UserHandler) QueryUserRoles(c *gin.Context) {
	userID, ok := optionalQueryID(c, "user_id")
	if !ok {
		return
	}
	deptID, ok := optionalQueryID(c, "dept_id")
	if !ok {
		return
	}

	roles, err := h.userService.QueryUserRoles(c.Request.Context(), &service.QueryUserRoleInput{UserID: userID, DeptID: deptID})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, roles)
}

// ExportUsers 导出员工列表
// GET /api/v1/users/export?search_key=&org_id=&org_type=
func (h *UserHandler) ExportUsers(c *gin.Context) {
	orgID, ok := optionalQueryID(c, "org_id")
	if !ok {
		return
	}
	input := &service.ExportUserInput{
		SearchKey: c.Query("search_key"),
		OrgType:   lookup.OrgType(c.Query("org_type")),
	}
	if orgID != nil {
		input.OrgID = *orgID
	}

	// 先写入缓冲区，失败时仍可返回 JSON 错误
	var buf bytes.Buffer
	if err := h.userService.Export(c.Request.Context(), input, &buf); err != nil {
		writeError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("users_%s.xlsx", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
