package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("用户不存在")
)

// IdentityField 可用于唯一性检查的身份字段
type IdentityField string

// 身份字段
const (
	FieldUserName IdentityField = "user_name"
	FieldPhone    IdentityField = "phone"
	FieldEmail    IdentityField = "email"
)

// UserFilter 用户查询过滤器
type UserFilter struct {
	SearchKey string // 用户名/中文名/邮箱/手机号 模糊匹配
	DeptID    *int64 // 精确匹配部门
}

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.UserInfo, roleIDs []int64) error
	Update(ctx context.Context, user *model.UserInfo, roleIDs []int64) error
	UpdateStatus(ctx context.Context, id int64, status model.Status, operatorID int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, operatorID int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.UserInfo, error)
	FirstBy(ctx context.Context, field IdentityField, value string, excludeID int64) (*model.UserInfo, error)
	FindAll(ctx context.Context, filter *UserFilter) ([]*model.UserInfo, error)
	Page(ctx context.Context, filter *UserFilter, page *Pagination) ([]*model.UserInfo, int64, error)
	GetRoles(ctx context.Context, userID int64) ([]*model.Role, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 在同一事务内创建用户及其角色关联
func (r *userRepository) Create(ctx context.Context, user *model.UserInfo, roleIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return replaceUserRoles(tx, user.ID, roleIDs)
	})
}

// Update 更新用户资料，roleIDs 为 nil 时保留原有角色
func (r *userRepository) Update(ctx context.Context, user *model.UserInfo, roleIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.UserInfo{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"chinese_name":          user.ChineseName,
			"phone":                 user.Phone,
			"email":                 user.Email,
			"dept_id":               user.DeptID,
			"position_id":           user.PositionID,
			"memo":                  user.Memo,
			"last_modifier_user_id": user.LastModifierUserID,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		if roleIDs == nil {
			return nil
		}
		return replaceUserRoles(tx, user.ID, roleIDs)
	})
}

func (r *userRepository) UpdateStatus(ctx context.Context, id int64, status model.Status, operatorID int64) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"status":                status,
		"last_modifier_user_id": operatorID,
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, operatorID int64) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"password":              passwordHash,
		"last_modifier_user_id": operatorID,
	})
}

func (r *userRepository) updateColumns(ctx context.Context, id int64, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.UserInfo{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete 软删除用户并清除角色关联
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.UserInfo{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&model.UserRole{}).Error
	})
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.UserInfo, error) {
	var user model.UserInfo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FirstBy 按单个身份字段查找第一条匹配记录，excludeID 非 0 时排除该用户
func (r *userRepository) FirstBy(ctx context.Context, field IdentityField, value string, excludeID int64) (*model.UserInfo, error) {
	switch field {
	case FieldUserName, FieldPhone, FieldEmail:
	default:
		return nil, fmt.Errorf("不支持的身份字段: %s", field)
	}

	query := r.db.WithContext(ctx).Where(string(field)+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var user model.UserInfo
	err := query.Order("id").Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, filter *UserFilter) ([]*model.UserInfo, error) {
	var users []*model.UserInfo
	err := userScope(filter)(r.db.WithContext(ctx).Model(&model.UserInfo{})).Order("id").Find(&users).Error
	return users, err
}

// Page 分页查询，总数与当前页来自同一快照
func (r *userRepository) Page(ctx context.Context, filter *UserFilter, page *Pagination) ([]*model.UserInfo, int64, error) {
	return paginate[model.UserInfo](ctx, r.db, userScope(filter), "id", page)
}

func (r *userRepository) GetRoles(ctx context.Context, userID int64) ([]*model.Role, error) {
	var roles []*model.Role
	err := r.db.WithContext(ctx).Model(&model.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id").
		Find(&roles).Error
	return roles, err
}

func userScope(filter *UserFilter) func(*gorm.DB) *gorm.DB {
	return func(query *gorm.DB) *gorm.DB {
		if filter == nil {
			return query
		}
		if filter.SearchKey != "" {
			key := like(filter.SearchKey)
			query = query.Where("user_name LIKE ? OR chinese_name LIKE ? OR email LIKE ? OR phone LIKE ?", key, key, key, key)
		}
		if filter.DeptID != nil {
			query = query.Where("dept_id = ?", *filter.DeptID)
		}
		return query
	}
}

// replaceUserRoles 以 roleIDs 整体替换用户角色
func replaceUserRoles(tx *gorm.DB, userID int64, roleIDs []int64) error {
	if err := tx.Where("user_id = ?", userID).Delete(&model.UserRole{}).Error; err != nil {
		return err
	}
	if len(roleIDs) == 0 {
		return nil
	}
	links := make([]model.UserRole, 0, len(roleIDs))
	for _, roleID := range uniqueIDs(roleIDs) {
		links = append(links, model.UserRole{UserID: userID, RoleID: roleID})
	}
	return tx.Create(&links).Error
}

// uniqueIDs 去重并保持原有顺序
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
