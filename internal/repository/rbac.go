package repository

import (
	"context"
	"errors"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"gorm.io/gorm"
)

var (
	ErrRoleNotFound       = errors.New("角色不存在")
	ErrPermissionNotFound = errors.New("权限不存在")
)

// RoleFilter 角色查询过滤器
type RoleFilter struct {
	Name string // 名称模糊匹配
	Memo string // 备注模糊匹配
}

// RoleRepository 角色仓库接口
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	UpdateStatus(ctx context.Context, id int64, status model.Status, operatorID int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Role, error)
	FindAll(ctx context.Context, filter *RoleFilter) ([]*model.Role, error)
	FindAssignable(ctx context.Context, deptID int64) ([]*model.Role, error)
	Page(ctx context.Context, filter *RoleFilter, page *Pagination) ([]*model.Role, int64, error)
	SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64, operatorID int64) error
	GetPermissionIDs(ctx context.Context, roleID int64) ([]int64, error)
	CountHoldersOutside(ctx context.Context, roleID, deptID int64) (int64, error)
}

// PermissionRepository 权限仓库接口
type PermissionRepository interface {
	Create(ctx context.Context, perm *model.Permission) error
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Permission, error)
	List(ctx context.Context) ([]*model.Permission, error)
	ListByRole(ctx context.Context, roleID int64) ([]*model.Permission, error)
	ListCodesByUser(ctx context.Context, userID int64) ([]string, error)
}

// roleRepository 角色仓库实现
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓库
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepository) Update(ctx context.Context, role *model.Role) error {
	result := r.db.WithContext(ctx).Model(&model.Role{}).Where("id = ?", role.ID).Updates(map[string]interface{}{
		"name":                  role.Name,
		"memo":                  role.Memo,
		"dept_id":               role.DeptID,
		"last_modifier_user_id": role.LastModifierUserID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *roleRepository) UpdateStatus(ctx context.Context, id int64, status model.Status, operatorID int64) error {
	result := r.db.WithContext(ctx).Model(&model.Role{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":                status,
		"last_modifier_user_id": operatorID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// Delete 删除角色，同时清除用户与权限关联
func (r *roleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.Role{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRoleNotFound
		}
		if err := tx.Where("role_id = ?", id).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("role_id = ?", id).Delete(&model.RolePermission{}).Error
	})
}

func (r *roleRepository) GetByID(ctx context.Context, id int64) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id").Take(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Role, error) {
	var roles []*model.Role
	if len(ids) == 0 {
		return roles, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) FindAll(ctx context.Context, filter *RoleFilter) ([]*model.Role, error) {
	var roles []*model.Role
	err := roleScope(filter)(r.db.WithContext(ctx).Model(&model.Role{})).Order("id").Find(&roles).Error
	return roles, err
}

// FindAssignable 查询可分配给部门的角色：全局角色或归属该部门的角色
func (r *roleRepository) FindAssignable(ctx context.Context, deptID int64) ([]*model.Role, error) {
	var roles []*model.Role
	err := r.db.WithContext(ctx).
		Where("dept_id IS NULL OR dept_id = 0 OR dept_id = ?", deptID).
		Order("id").
		Find(&roles).Error
	return roles, err
}

func (r *roleRepository) Page(ctx context.Context, filter *RoleFilter, page *Pagination) ([]*model.Role, int64, error) {
	return paginate[model.Role](ctx, r.db, roleScope(filter), "id", page)
}

// SetPermissions 以 permissionIDs 整体替换角色权限
func (r *roleRepository) SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64, operatorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role model.Role
		if err := tx.Select("id").First(&role, "id = ?", roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		if err := tx.Model(&role).Update("last_modifier_user_id", operatorID).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		ids := uniqueIDs(permissionIDs)
		if len(ids) == 0 {
			return nil
		}
		links := make([]model.RolePermission, 0, len(ids))
		for _, id := range ids {
			links = append(links, model.RolePermission{RoleID: roleID, PermissionID: id})
		}
		return tx.Create(&links).Error
	})
}

func (r *roleRepository) GetPermissionIDs(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.RolePermission{}).
		Where("role_id = ?", roleID).
		Order("permission_id").
		Pluck("permission_id", &ids).Error
	return ids, err
}

// CountHoldersOutside 统计拥有该角色但不在 deptID 部门的员工数
func (r *roleRepository) CountHoldersOutside(ctx context.Context, roleID, deptID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserRole{}).
		Joins("JOIN user_infos ON user_infos.id = user_roles.user_id AND user_infos.deleted_at IS NULL").
		Where("user_roles.role_id = ? AND user_infos.dept_id <> ?", roleID, deptID).
		Count(&count).Error
	return count, err
}

func roleScope(filter *RoleFilter) func(*gorm.DB) *gorm.DB {
	return func(query *gorm.DB) *gorm.DB {
		if filter == nil {
			return query
		}
		if filter.Name != "" {
			query = query.Where("name LIKE ?", like(filter.Name))
		}
		if filter.Memo != "" {
			query = query.Where("memo LIKE ?", like(filter.Memo))
		}
		return query
	}
}

// permissionRepository 权限仓库实现
type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository 创建权限仓库
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Create(ctx context.Context, perm *model.Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

func (r *permissionRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Permission, error) {
	var perms []*model.Permission
	if len(ids) == 0 {
		return perms, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&perms).Error
	return perms, err
}

func (r *permissionRepository) List(ctx context.Context) ([]*model.Permission, error) {
	var perms []*model.Permission
	err := r.db.WithContext(ctx).Order("sort, id").Find(&perms).Error
	return perms, err
}

// ListByRole 查询角色被直接授予的权限节点
func (r *permissionRepository) ListByRole(ctx context.Context, roleID int64) ([]*model.Permission, error) {
	var perms []*model.Permission
	err := r.db.WithContext(ctx).Model(&model.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.id").
		Find(&perms).Error
	return perms, err
}

// ListCodesByUser 查询用户通过启用角色获得的权限代码
// 账号冻结、已删除或不存在时不返回任何权限
func (r *permissionRepository) ListCodesByUser(ctx context.Context, userID int64) ([]string, error) {
	var user model.UserInfo
	err := r.db.WithContext(ctx).Select("id", "status").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsValid() {
		return nil, nil
	}

	var codes []string
	err = r.db.WithContext(ctx).Model(&model.Permission{}).
		Distinct().
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id AND roles.deleted_at IS NULL").
		Where("user_roles.user_id = ? AND roles.status = ?", userID, model.StatusValid).
		Order("permissions.code").
		Pluck("permissions.code", &codes).Error
	return codes, err
}
