package service

import (
	"context"
	"errors"

	"github.com/pu-ac-cn/rbac-backend/internal/repository"
)

var identityFieldNames = map[string]string{
	string(repository.FieldUserName): "用户名",
	string(repository.FieldPhone):    "手机号码",
	string(repository.FieldEmail):    "Email",
}

// Identity 待检查的身份信息
type Identity struct {
	UserName string
	Phone    string
	Email    string
}

// IdentityChecker 用户名/手机号/邮箱唯一性检查
// 按 用户名 -> 手机号 -> 邮箱 的顺序逐个查询，发现冲突立即返回
type IdentityChecker struct {
	users repository.UserRepository
}

// NewIdentityChecker 创建唯一性检查器
func NewIdentityChecker(users repository.UserRepository) *IdentityChecker {
	return &IdentityChecker{users: users}
}

// Check 检查新用户的身份信息
func (c *IdentityChecker) Check(ctx context.Context, id Identity) error {
	return c.CheckExcept(ctx, 0, id)
}

// CheckExcept 检查身份信息，忽略 userID 本身（用于更新）
func (c *IdentityChecker) CheckExcept(ctx context.Context, userID int64, id Identity) error {
	fields := []struct {
		field repository.IdentityField
		value string
	}{
		{repository.FieldUserName, id.UserName},
		{repository.FieldPhone, id.Phone},
		{repository.FieldEmail, id.Email},
	}

	for _, f := range fields {
		_, err := c.users.FirstBy(ctx, f.field, f.value, userID)
		if err == nil {
			return duplicateIdentity(string(f.field), f.value)
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
	}
	return nil
}
