// Package model 定义数据模型
package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BaseModel 基础模型，包含通用字段
type BaseModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuditModel 带最后修改人的基础模型
type AuditModel struct {
	BaseModel
	LastModifierUserID *int64 `gorm:"index" json:"last_modifier_user_id,omitempty"` // 最后修改人
}

// Touch 记录最后修改人
func (a *AuditModel) Touch(operatorID int64) {
	if operatorID == 0 {
		return
	}
	id := operatorID
	a.LastModifierUserID = &id
}

// Status 启用状态，只有 Valid 与 Invalid 两个取值
type Status int

// 状态常量
const (
	StatusInvalid Status = 0 // 冻结/禁用
	StatusValid   Status = 1 // 启用
)

// IsValid 检查状态值是否合法
func (s Status) IsValid() bool {
	return s == StatusValid || s == StatusInvalid
}

// String 返回状态名称
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus 解析状态值
func ParseStatus(v int) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return 0, fmt.Errorf("无效的状态值: %d", v)
	}
	return s, nil
}

// IsGlobalDept 判断部门范围是否为全局（nil 或 0）
func IsGlobalDept(deptID *int64) bool {
	return deptID == nil || *deptID == 0
}
