package service

import (
	"time"

	"github.com/pu-ac-cn/rbac-backend/internal/lookup"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
)

// PageResult 分页结果
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
}

// CreateUserInput 新增员工
type CreateUserInput struct {
	UserName    string  `json:"user_name" validate:"required,min=3,max=50"`
	ChineseName string  `json:"chinese_name" validate:"required,max=50"`
	Phone       string  `json:"phone" validate:"required,max=20"`
	Email       string  `json:"email" validate:"required,email,max=100"`
	Password    string  `json:"password" validate:"required,min=6,max=64"`
	DeptID      int64   `json:"dept_id" validate:"gt=0"`
	PositionID  int64   `json:"position_id" validate:"gt=0"`
	Memo        string  `json:"memo" validate:"max=500"`
	RoleIDs     []int64 `json:"role_ids" validate:"dive,gt=0"`
}

// UpdateUserInput 更新员工，RoleIDs 为 nil 时不修改角色
type UpdateUserInput struct {
	ID          int64   `json:"id" validate:"gt=0"`
	ChineseName string  `json:"chinese_name" validate:"required,max=50"`
	Phone       string  `json:"phone" validate:"required,max=20"`
	Email       string  `json:"email" validate:"required,email,max=100"`
	DeptID      int64   `json:"dept_id" validate:"gt=0"`
	PositionID  int64   `json:"position_id" validate:"gt=0"`
	Memo        string  `json:"memo" validate:"max=500"`
	RoleIDs     []int64 `json:"role_ids" validate:"omitempty,dive,gt=0"`
}

// UpdateUserStatusInput 激活/冻结账号
type UpdateUserStatusInput struct {
	ID     int64         `json:"id" validate:"gt=0"`
	Status *model.Status `json:"status" validate:"required,oneof=0 1"`
}

// ResetPasswordInput 重置密码
type ResetPasswordInput struct {
	ID          int64  `json:"id" validate:"gt=0"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=64"`
}

// QueryUserInput 员工分页查询，OrgID 为 0 时不按组织过滤
type QueryUserInput struct {
	SearchKey string         `json:"search_key" validate:"max=50"`
	OrgID     int64          `json:"org_id" validate:"gte=0"`
	OrgType   lookup.OrgType `json:"org_type" validate:"omitempty,oneof=corporation department"`
	Page      int            `json:"page" validate:"gte=1,lte=1000000"`
	PageSize  int            `json:"page_size" validate:"gte=1,lte=500"`
}

// ExportUserInput 员工导出条件
type ExportUserInput struct {
	SearchKey string         `json:"search_key" validate:"max=50"`
	OrgID     int64          `json:"org_id" validate:"gte=0"`
	OrgType   lookup.OrgType `json:"org_type" validate:"omitempty,oneof=corporation department"`
}

// QueryUserRoleInput 可分配角色查询，用户 ID 与部门 ID 至少提供一个
type QueryUserRoleInput struct {
	UserID *int64 `json:"user_id"`
	DeptID *int64 `json:"dept_id"`
}

// RoleBrief 角色简要信息
type RoleBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserOutput 员工信息
type UserOutput struct {
	ID                 int64        `json:"id"`
	UserName           string       `json:"user_name"`
	ChineseName        string       `json:"chinese_name"`
	Phone              string       `json:"phone"`
	Email              string       `json:"email"`
	DeptID             int64        `json:"dept_id"`
	DeptName           string       `json:"dept_name"`
	PositionID         int64        `json:"position_id"`
	PositionName       string       `json:"position_name"`
	Status             model.Status `json:"status"`
	Memo               string       `json:"memo,omitempty"`
	Roles              []RoleBrief  `json:"roles,omitempty"`
	LastModifierUserID *int64       `json:"last_modifier_user_id,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func newUserOutput(u *model.UserInfo) *UserOutput {
	return &UserOutput{
		ID:                 u.ID,
		UserName:           u.UserName,
		ChineseName:        u.ChineseName,
		Phone:              u.Phone,
		Email:              u.Email,
		DeptID:             u.DeptID,
		PositionID:         u.PositionID,
		Status:             u.Status,
		Memo:               u.Memo,
		LastModifierUserID: u.LastModifierUserID,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// CheckStatus 角色勾选状态
type CheckStatus string

// 勾选状态
const (
	CheckStatusChecked   CheckStatus = "checked"
	CheckStatusUnChecked CheckStatus = "unchecked"
)

// UserRoleOutput 可分配角色
type UserRoleOutput struct {
	RoleID      int64       `json:"role_id"`
	Name        string      `json:"name"`
	DeptID      *int64      `json:"dept_id,omitempty"`
	DeptName    string      `json:"dept_name,omitempty"`
	CheckStatus CheckStatus `json:"check_status"`
}

// CreateRoleInput 新增角色
type CreateRoleInput struct {
	Name   string `json:"name" validate:"required,max=50"`
	Memo   string `json:"memo" validate:"max=500"`
	DeptID *int64 `json:"dept_id" validate:"omitempty,gte=0"`
}

// UpdateRoleInput 更新角色
type UpdateRoleInput struct {
	ID     int64  `json:"id" validate:"gt=0"`
	Name   string `json:"name" validate:"required,max=50"`
	Memo   string `json:"memo" validate:"max=500"`
	DeptID *int64 `json:"dept_id" validate:"omitempty,gte=0"`
}

// UpdateRoleStatusInput 启用/禁用角色
type UpdateRoleStatusInput struct {
	ID     int64         `json:"id" validate:"gt=0"`
	Status *model.Status `json:"status" validate:"required,oneof=0 1"`
}

// SetRolePermissionInput 设置角色权限，整体替换
type SetRolePermissionInput struct {
	RoleID        int64   `json:"role_id" validate:"gt=0"`
	PermissionIDs []int64 `json:"permission_ids" validate:"dive,gt=0"`
}

// QueryRoleInput 角色分页查询
type QueryRoleInput struct {
	SearchKey string `json:"search_key" validate:"max=50"`
	Page      int    `json:"page" validate:"gte=1,lte=1000000"`
	PageSize  int    `json:"page_size" validate:"gte=1,lte=500"`
}

// RoleOutput 角色信息
type RoleOutput struct {
	ID                       int64        `json:"id"`
	Name                     string       `json:"name"`
	Memo                     string       `json:"memo"`
	DeptID                   *int64       `json:"dept_id,omitempty"`
	DeptName                 string       `json:"dept_name,omitempty"`
	Status                   model.Status `json:"status"`
	LastModifierUserID       *int64       `json:"last_modifier_user_id,omitempty"`
	LastModificationUserName string       `json:"last_modification_user_name,omitempty"`
	CreatedAt                time.Time    `json:"created_at"`
	UpdatedAt                time.Time    `json:"updated_at"`
}

func newRoleOutput(r *model.Role) *RoleOutput {
	return &RoleOutput{
		ID:                 r.ID,
		Name:               r.Name,
		Memo:               r.Memo,
		DeptID:             r.DeptID,
		Status:             r.Status,
		LastModifierUserID: r.LastModifierUserID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
