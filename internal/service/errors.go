// Package service 业务逻辑层
package service

import (
	"errors"
	"fmt"
)

// 领域错误类别，调用方使用 errors.Is 判断
var (
	ErrNotFound          = errors.New("数据不存在")
	ErrDuplicateIdentity = errors.New("身份信息重复")
	ErrInvalidRequest    = errors.New("请求无效")
	ErrValidationFailure = errors.New("参数校验失败")
	ErrDependencyFailure = errors.New("依赖服务调用失败")
)

// 实体名称
const (
	EntityUser       = "user"
	EntityRole       = "role"
	EntityPermission = "permission"
	EntityDepartment = "department"
	EntityPosition   = "position"
)

// DomainError 领域错误
type DomainError struct {
	Kind   error       // 错误类别
	Entity string      // 相关实体
	Field  string      // 相关字段
	Value  interface{} // 相关取值（id、冲突值等）
	Msg    string
	Err    error // 底层错误
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap 同时暴露错误类别与底层错误
func (e *DomainError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// AsDomainError 提取领域错误
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var entityNames = map[string]string{
	EntityUser:       "用户",
	EntityRole:       "角色",
	EntityPermission: "权限",
	EntityDepartment: "部门",
	EntityPosition:   "职位",
}

func notFound(entity string, id int64) error {
	return &DomainError{
		Kind:   ErrNotFound,
		Entity: entity,
		Field:  "id",
		Value:  id,
		Msg:    fmt.Sprintf("不存在Id为%d的%s", id, entityNames[entity]),
	}
}

func duplicateIdentity(field, value string) error {
	return &DomainError{
		Kind:   ErrDuplicateIdentity,
		Entity: EntityUser,
		Field:  field,
		Value:  value,
		Msg:    fmt.Sprintf("已经存在%s为%s的用户", identityFieldNames[field], value),
	}
}

func duplicateRoleName(name string) error {
	return &DomainError{
		Kind:   ErrDuplicateIdentity,
		Entity: EntityRole,
		Field:  "name",
		Value:  name,
		Msg:    fmt.Sprintf("已经存在名称为%s的角色", name),
	}
}

func invalidRequest(msg string) error {
	return &DomainError{Kind: ErrInvalidRequest, Msg: msg}
}

func validationFailure(field, msg string) error {
	return &DomainError{Kind: ErrValidationFailure, Field: field, Msg: msg}
}

func dependencyFailure(entity string, id int64, err error) error {
	return &DomainError{
		Kind:   ErrDependencyFailure,
		Entity: entity,
		Field:  "id",
		Value:  id,
		Msg:    fmt.Sprintf("查询%s(%d)失败", entityNames[entity], id),
		Err:    err,
	}
}
