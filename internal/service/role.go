package service

import (
	"context"
	"errors"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"go.uber.org/zap"
)

// RoleService 角色服务接口
type RoleService interface {
	Create(ctx context.Context, input *CreateRoleInput, operatorID int64) (*model.Role, error)
	Update(ctx context.Context, input *UpdateRoleInput, operatorID int64) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*RoleOutput, error)
	List(ctx context.Context, searchKey string) ([]*RoleOutput, error)
	Query(ctx context.Context, input *QueryRoleInput) (*PageResult[*RoleOutput], error)
	Status(ctx context.Context, input *UpdateRoleStatusInput, operatorID int64) error
	SetPermissions(ctx context.Context, input *SetRolePermissionInput, operatorID int64) error
	GetRolePermissions(ctx context.Context, id int64) ([]*PermissionTreeNode, error)
	PermissionTree(ctx context.Context, roleID int64) ([]*PermissionTreeNode, error)
}

type roleService struct {
	roles      repository.RoleRepository
	perms      repository.PermissionRepository
	users      repository.UserRepository
	tree       *PermissionTreeBuilder
	enricher   *Enricher
	writeCheck *Enricher
	logger     *zap.Logger
}

// NewRoleService 创建角色服务
func NewRoleService(roles repository.RoleRepository, perms repository.PermissionRepository, users repository.UserRepository, tree *PermissionTreeBuilder, enricher *Enricher, logger *zap.Logger) RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &roleService{
		roles:      roles,
		perms:      perms,
		users:      users,
		tree:       tree,
		enricher:   enricher,
		writeCheck: enricher.Strict(),
		logger:     logger,
	}
}

// Create 新增角色，名称不能重复
func (s *roleService) Create(ctx context.Context, input *CreateRoleInput, operatorID int64) (*model.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, input.Name, 0); err != nil {
		return nil, err
	}
	if !model.IsGlobalDept(input.DeptID) {
		if err := s.writeCheck.requireDepartment(ctx, *input.DeptID); err != nil {
			return nil, err
		}
	}

	role := &model.Role{
		Name:   input.Name,
		Memo:   input.Memo,
		DeptID: input.DeptID,
		Status: model.StatusValid,
	}
	role.Touch(operatorID)
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Update 更新角色
// 收窄部门范围时，已持有该角色的员工必须都在新部门内
func (s *roleService) Update(ctx context.Context, input *UpdateRoleInput, operatorID int64) error {
	if err := validateInput(input); err != nil {
		return err
	}
	role, err := s.getRole(ctx, input.ID)
	if err != nil {
		return err
	}
	if err := s.checkName(ctx, input.Name, input.ID); err != nil {
		return err
	}
	if !model.IsGlobalDept(input.DeptID) {
		deptID := *input.DeptID
		if err := s.writeCheck.requireDepartment(ctx, deptID); err != nil {
			return err
		}
		outside, err := s.roles.CountHoldersOutside(ctx, input.ID, deptID)
		if err != nil {
			return err
		}
		if outside > 0 {
			return &DomainError{
				Kind:   ErrInvalidRequest,
				Entity: EntityRole,
				Field:  "dept_id",
				Value:  deptID,
				Msg:    "存在不属于该部门的员工拥有此角色，不能修改角色所属部门",
			}
		}
	}

	role.Name = input.Name
	role.Memo = input.Memo
	role.DeptID = input.DeptID
	role.Touch(operatorID)
	if err := s.roles.Update(ctx, role); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return notFound(EntityRole, input.ID)
		}
		return err
	}
	return nil
}

// Delete 删除角色及其用户、权限关联
func (s *roleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.getRole(ctx, id); err != nil {
		return err
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return notFound(EntityRole, id)
		}
		return err
	}
	s.logger.Info("删除角色", zap.Int64("role_id", id))
	return nil
}

func (s *roleService) Get(ctx context.Context, id int64) (*RoleOutput, error) {
	role, err := s.getRole(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.enrich(ctx, []*model.Role{role})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// List 按名称模糊查询角色
func (s *roleService) List(ctx context.Context, searchKey string) ([]*RoleOutput, error) {
	roles, err := s.roles.FindAll(ctx, &repository.RoleFilter{Name: searchKey})
	if err != nil {
		return nil, err
	}
	rows := make([]*RoleOutput, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, newRoleOutput(role))
	}
	return rows, nil
}

// Query 分页查询，名称与备注同时包含关键字
func (s *roleService) Query(ctx context.Context, input *QueryRoleInput) (*PageResult[*RoleOutput], error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	roles, total, err := s.roles.Page(ctx,
		&repository.RoleFilter{Name: input.SearchKey, Memo: input.SearchKey},
		&repository.Pagination{Page: input.Page, PageSize: input.PageSize},
	)
	if err != nil {
		return nil, err
	}
	rows, err := s.enrich(ctx, roles)
	if err != nil {
		return nil, err
	}
	return &PageResult[*RoleOutput]{Items: rows, TotalCount: total}, nil
}

// Status 启用或禁用角色
func (s *roleService) Status(ctx context.Context, input *UpdateRoleStatusInput, operatorID int64) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if _, err := s.getRole(ctx, input.ID); err != nil {
		return err
	}
	if err := s.roles.UpdateStatus(ctx, input.ID, *input.Status, operatorID); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return notFound(EntityRole, input.ID)
		}
		return err
	}
	return nil
}

// SetPermissions 整体替换角色权限，权限 ID 必须全部存在
func (s *roleService) SetPermissions(ctx context.Context, input *SetRolePermissionInput, operatorID int64) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if _, err := s.getRole(ctx, input.RoleID); err != nil {
		return err
	}

	if len(input.PermissionIDs) > 0 {
		perms, err := s.perms.GetByIDs(ctx, input.PermissionIDs)
		if err != nil {
			return err
		}
		found := make(map[int64]bool, len(perms))
		for _, p := range perms {
			found[p.ID] = true
		}
		for _, id := range input.PermissionIDs {
			if !found[id] {
				return notFound(EntityPermission, id)
			}
		}
	}

	if err := s.roles.SetPermissions(ctx, input.RoleID, input.PermissionIDs, operatorID); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return notFound(EntityRole, input.RoleID)
		}
		return err
	}
	s.logger.Info("设置角色权限",
		zap.Int64("role_id", input.RoleID),
		zap.Int64s("permission_ids", input.PermissionIDs),
		zap.Int64("operator_id", operatorID),
	)
	return nil
}

// GetRolePermissions 角色已授予的权限树
func (s *roleService) GetRolePermissions(ctx context.Context, id int64) ([]*PermissionTreeNode, error) {
	if _, err := s.getRole(ctx, id); err != nil {
		return nil, err
	}
	return s.tree.Build(ctx, id)
}

// PermissionTree 完整权限树，roleID 非 0 时标记该角色已授予的节点
func (s *roleService) PermissionTree(ctx context.Context, roleID int64) ([]*PermissionTreeNode, error) {
	granted := make(map[int64]bool)
	if roleID != 0 {
		if _, err := s.getRole(ctx, roleID); err != nil {
			return nil, err
		}
		ids, err := s.roles.GetPermissionIDs(ctx, roleID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			granted[id] = true
		}
	}
	return s.tree.BuildAll(ctx, granted)
}

func (s *roleService) getRole(ctx context.Context, id int64) (*model.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, notFound(EntityRole, id)
		}
		return nil, err
	}
	return role, nil
}

// checkName 角色名称唯一，excludeID 为当前角色
func (s *roleService) checkName(ctx context.Context, name string, excludeID int64) error {
	existing, err := s.roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return duplicateRoleName(name)
	}
	return nil
}

// enrich 补全部门名称与最后修改人
func (s *roleService) enrich(ctx context.Context, roles []*model.Role) ([]*RoleOutput, error) {
	rows := make([]*RoleOutput, len(roles))
	b := s.enricher.newBatch()
	for i, role := range roles {
		row := newRoleOutput(role)
		rows[i] = row
		if !role.IsGlobal() {
			deptID := *role.DeptID
			b.add(enrichTask{
				rowID:  row.ID,
				field:  "dept_name",
				entity: EntityDepartment,
				refID:  deptID,
				fetch: func(ctx context.Context) error {
					name, err := b.departmentName(ctx, deptID)
					row.DeptName = name
					return err
				},
			})
		}
		if role.LastModifierUserID != nil {
			modifierID := *role.LastModifierUserID
			b.add(enrichTask{
				rowID:  row.ID,
				field:  "last_modification_user_name",
				entity: EntityUser,
				refID:  modifierID,
				fetch: func(ctx context.Context) error {
					user, err := s.users.GetByID(ctx, modifierID)
					if errors.Is(err, repository.ErrUserNotFound) {
						// 修改人已删除时不显示
						return nil
					}
					if err != nil {
						return err
					}
					row.LastModificationUserName = user.ChineseName
					return nil
				},
			})
		}
	}
	if err := b.run(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}
