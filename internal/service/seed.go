package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
)

// SeedPermissions 写入缺失的内置权限，已存在的代码保持不变，返回新建数量
func SeedPermissions(ctx context.Context, perms repository.PermissionRepository) (int, error) {
	existing, err := perms.List(ctx)
	if err != nil {
		return 0, err
	}
	byCode := make(map[string]int64, len(existing))
	for _, p := range existing {
		byCode[p.Code] = p.ID
	}

	created := 0
	for _, seed := range model.DefaultPermissions() {
		if _, ok := byCode[seed.Code]; ok {
			continue
		}
		perm := &model.Permission{
			Name:   seed.Name,
			Code:   seed.Code,
			Type:   seed.Type,
			Path:   seed.Path,
			Sort:   seed.Sort,
			Status: model.StatusValid,
		}
		if seed.ParentCode != "" {
			parentID, ok := byCode[seed.ParentCode]
			if !ok {
				return created, fmt.Errorf("内置权限 %s 的父节点 %s 不存在", seed.Code, seed.ParentCode)
			}
			perm.ParentID = &parentID
		}
		if err := perms.Create(ctx, perm); err != nil {
			return created, err
		}
		byCode[perm.Code] = perm.ID
		created++
	}
	return created, nil
}

// EnsureAdminRole 确保全局系统管理员角色存在并拥有全部权限
func EnsureAdminRole(ctx context.Context, roles repository.RoleRepository, perms repository.PermissionRepository, operatorID int64) (*model.Role, error) {
	role, err := roles.GetByName(ctx, model.RoleNameSystemAdmin)
	if err != nil {
		if !errors.Is(err, repository.ErrRoleNotFound) {
			return nil, err
		}
		role = &model.Role{
			Name:   model.RoleNameSystemAdmin,
			Memo:   "拥有系统全部权限",
			Status: model.StatusValid,
		}
		role.Touch(operatorID)
		if err := roles.Create(ctx, role); err != nil {
			return nil, err
		}
	}

	all, err := perms.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	if err := roles.SetPermissions(ctx, role.ID, ids, operatorID); err != nil {
		return nil, err
	}
	return role, nil
}

// AssignRole 为用户追加一个角色，角色必须可分配给用户所在部门
func AssignRole(ctx context.Context, users repository.UserRepository, user *model.UserInfo, role *model.Role, operatorID int64) error {
	if !CanAssign(role, user.DeptID) {
		return invalidRequest(fmt.Sprintf("角色%s不能分配给部门%d的员工", role.Name, user.DeptID))
	}
	held, err := users.GetRoles(ctx, user.ID)
	if err != nil {
		return err
	}
	roleIDs := make([]int64, 0, len(held)+1)
	for _, r := range held {
		if r.ID == role.ID {
			return nil
		}
		roleIDs = append(roleIDs, r.ID)
	}
	roleIDs = append(roleIDs, role.ID)

	user.Touch(operatorID)
	return users.Update(ctx, user, roleIDs)
}
