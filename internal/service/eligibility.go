package service

import (
	"context"
	"errors"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
)

// EligibilityResolver 计算用户或部门可分配的角色
type EligibilityResolver struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	enricher *Enricher
}

// NewEligibilityResolver 创建可分配角色解析器
func NewEligibilityResolver(users repository.UserRepository, roles repository.RoleRepository, enricher *Enricher) *EligibilityResolver {
	return &EligibilityResolver{users: users, roles: roles, enricher: enricher}
}

// CanAssign 角色能否分配给指定部门的用户
func CanAssign(role *model.Role, deptID int64) bool {
	return role.AssignableTo(deptID)
}

// Resolve 返回可分配角色列表
// 指定用户时以用户所在部门为目标部门，并标记用户已拥有的角色；只指定部门时全部为未勾选
func (r *EligibilityResolver) Resolve(ctx context.Context, input QueryUserRoleInput) ([]*UserRoleOutput, error) {
	var userID int64
	if input.UserID != nil {
		userID = *input.UserID
	}
	if userID == 0 && input.DeptID == nil {
		return nil, invalidRequest("必须指定用户Id或是部门Id")
	}

	var deptID int64
	granted := make(map[int64]bool)
	if userID != 0 {
		user, err := r.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, notFound(EntityUser, userID)
			}
			return nil, err
		}
		deptID = user.DeptID

		held, err := r.users.GetRoles(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, role := range held {
			granted[role.ID] = true
		}
	} else {
		deptID = *input.DeptID
	}

	candidates, err := r.roles.FindAssignable(ctx, deptID)
	if err != nil {
		return nil, err
	}

	outputs := make([]*UserRoleOutput, 0, len(candidates))
	b := r.enricher.newBatch()
	for _, role := range candidates {
		// 仓库查询已按范围过滤，这里再次确认
		if !CanAssign(role, deptID) {
			continue
		}
		out := &UserRoleOutput{
			RoleID:      role.ID,
			Name:        role.Name,
			DeptID:      role.DeptID,
			CheckStatus: CheckStatusUnChecked,
		}
		if granted[role.ID] {
			out.CheckStatus = CheckStatusChecked
		}
		if !role.IsGlobal() {
			scope := *role.DeptID
			b.add(enrichTask{
				rowID:  role.ID,
				field:  "dept_name",
				entity: EntityDepartment,
				refID:  scope,
				fetch: func(ctx context.Context) error {
					name, err := b.departmentName(ctx, scope)
					out.DeptName = name
					return err
				},
			})
		}
		outputs = append(outputs, out)
	}

	if err := b.run(ctx); err != nil {
		return nil, err
	}
	return outputs, nil
}

// checkAssignable 校验角色都存在且可分配给该部门
func (r *EligibilityResolver) checkAssignable(ctx context.Context, roleIDs []int64, deptID int64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	roles, err := r.roles.GetByIDs(ctx, roleIDs)
	if err != nil {
		return err
	}
	found := make(map[int64]*model.Role, len(roles))
	for _, role := range roles {
		found[role.ID] = role
	}
	for _, id := range roleIDs {
		role, ok := found[id]
		if !ok {
			return notFound(EntityRole, id)
		}
		if !CanAssign(role, deptID) {
			return &DomainError{
				Kind:   ErrInvalidRequest,
				Entity: EntityRole,
				Field:  "role_ids",
				Value:  id,
				Msg:    "角色" + role.Name + "不能分配给该部门的员工",
			}
		}
	}
	return nil
}
