package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/rbac-backend/internal/middleware"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
	"github.com/pu-ac-cn/rbac-backend/pkg/response"
	"go.uber.org/zap"
)

// 接口权限代码
const (
	PermUserView   = model.PermCodeUserView
	PermUserManage = model.PermCodeUserManage
	PermRoleView   = model.PermCodeRoleView
	PermRoleManage = model.PermCodeRoleManage
)

// RouterConfig 路由依赖
type RouterConfig struct {
	Users       service.UserService
	Roles       service.RoleService
	Verifier    service.TokenVerifier
	Permissions middleware.PermissionLister
	Health      *HealthHandler
	Logger      *zap.Logger
}

// NewRouter 创建路由
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	userHandler := NewUserHandler(cfg.Users, logger)
	roleHandler := NewRoleHandler(cfg.Roles, logger)

	router := gin.New()
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))

	if cfg.Health != nil {
		router.GET("/health", cfg.Health.Health)
	}

	api := router.Group("/api/v1")
	api.GET("/ping", func(c *gin.Context) {
		response.Success(c, "pong")
	})

	authRequired := api.Group("")
	authRequired.Use(middleware.OperatorAuth(cfg.Verifier))

	perm := func(code string) gin.HandlerFunc {
		return middleware.RequirePermission(cfg.Permissions, logger, code)
	}

	// 员工
	users := authRequired.Group("/users")
	{
		users.GET("", perm(PermUserView), userHandler.ListUsers)
		users.GET("/export", perm(PermUserView), userHandler.ExportUsers)
		users.GET("/:id", perm(PermUserView), userHandler.GetUser)
		users.POST("", perm(PermUserManage), userHandler.CreateUser)
		users.PUT("/:id", perm(PermUserManage), userHandler.UpdateUser)
		users.DELETE("/:id", perm(PermUserManage), userHandler.DeleteUser)
		users.PUT("/:id/status", perm(PermUserManage), userHandler.UpdateUserStatus)
		users.PUT("/:id/password", perm(PermUserManage), userHandler.ResetPassword)
	}
	authRequired.GET("/user-roles", perm(PermUserManage), userHandler.QueryUserRoles)
	authRequired.GET("/departments/:id/users", perm(PermUserView), userHandler.GetDepartmentUsers)
	authRequired.GET("/corporations/:id/users", perm(PermUserView), userHandler.GetCorporationUsers)

	// 角色与权限
	roles := authRequired.Group("/roles")
	{
		roles.GET("", perm(PermRoleView), roleHandler.QueryRoles)
		roles.GET("/all", perm(PermRoleView), roleHandler.ListRoles)
		roles.GET("/:id", perm(PermRoleView), roleHandler.GetRole)
		roles.GET("/:id/permissions", perm(PermRoleView), roleHandler.GetRolePermissions)
		roles.GET("/:id/permission-tree", perm(PermRoleView), roleHandler.GetPermissionTree)
		roles.POST("", perm(PermRoleManage), roleHandler.CreateRole)
		roles.PUT("/:id", perm(PermRoleManage), roleHandler.UpdateRole)
		roles.DELETE("/:id", perm(PermRoleManage), roleHandler.DeleteRole)
		roles.PUT("/:id/status", perm(PermRoleManage), roleHandler.UpdateRoleStatus)
		roles.PUT("/:id/permissions", perm(PermRoleManage), roleHandler.SetRolePermissions)
	}
	authRequired.GET("/permissions/tree", perm(PermRoleView), roleHandler.GetAllPermissions)

	return router
}
