package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/internal/middleware"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
	"go.uber.org/zap"
)

// RoleHandler 角色管理处理器
type RoleHandler struct {
	roleService service.RoleService
	logger      *zap.Logger
}

// NewRoleHandler 创建角色管理处理器
func NewRoleHandler(roleSvc service.RoleService, logger *zap.Logger) *RoleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleHandler{roleService: roleSvc, logger: logger}
}

// CreateRole 新增角色
// POST /api/v1/roles
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), &req, middleware.OperatorID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "新增角色信息成功", gin.H{"id": role.ID})
}

// UpdateRole 更新角色
// PUT /api/v1/roles/:id
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateRoleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ID = id

	if err := h.roleService.Update(c.Request.Context(), &req, middleware.OperatorID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "更新角色信息成功", nil)
}

// DeleteRole 删除角色
// DELETE /api/v1/roles/:id
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "删除角色信息成功", nil)
}

// GetRole 获取角色详情
// GET /api/v1/roles/:id
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	role, err := h.roleService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, role)
}

// ListRoles 角色列表（不分页）
// GET /api/v1/roles/all?search_key=
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context(), c.Query("search_key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, roles)
}

// QueryRoles 角色分页查询
// GET /api/v1/roles?search_key=&page=&page_size=
func (h *RoleHandler) QueryRoles(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", 20)
	if !ok {
		return
	}

	result, err := h.roleService.Query(c.Request.Context(), &service.QueryRoleInput{
		SearchKey: c.Query("search_key"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, result)
}

// UpdateRoleStatus 启用/禁用角色
// PUT /api/v1/roles/:id/status
func (h *RoleHandler) UpdateRoleStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateRoleStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.ID = id

	if err := h.roleService.Status(c.Request.Context(), &req, middleware.OperatorID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if *req.Status == model.StatusValid {
		response.SuccessWithMsg(c, "启用角色成功", nil)
		return
	}
	response.SuccessWithMsg(c, "禁用角色成功", nil)
}

// SetRolePermissions 设置角色权限（整体替换）
// PUT /api/v1/roles/:id/permissions
func (h *RoleHandler) SetRolePermissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.SetRolePermissionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.RoleID = id

	if err := h.roleService.SetPermissions(c.Request.Context(), &req, middleware.OperatorID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.SuccessWithMsg(c, "设置角色权限信息成功", nil)
}

// GetRolePermissions 角色已授权的权限（含祖先节点的树）
// GET /api/v1/roles/:id/permissions
func (h *RoleHandler) GetRolePermissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tree, err := h.roleService.GetRolePermissions(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, tree)
}

// GetPermissionTree 完整权限树，标记角色已授权节点
// GET /api/v1/roles/:id/permission-tree
func (h *RoleHandler) GetPermissionTree(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tree, err := h.roleService.PermissionTree(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, tree)
}

// GetAllPermissions 完整权限树
// GET /api/v1/permissions/tree
func (h *RoleHandler) GetAllPermissions(c *gin.Context) {
	tree, err := h.roleService.PermissionTree(c.Request.Context(), 0)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Success(c, tree)
}
