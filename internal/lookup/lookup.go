// Package lookup 组织、部门、职位等协作服务的查询接口
package lookup

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("组织数据不存在")
	ErrUnavailable = errors.New("组织服务不可用")
)

// OrgType 组织类型
type OrgType string

// 组织类型常量
const (
	OrgTypeCorporation OrgType = "corporation" // 公司
	OrgTypeDepartment  OrgType = "department"  // 部门
)

// Department 部门
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Position 职位
type Position struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OrganizationService 组织服务
type OrganizationService interface {
	// GetSubDeptIDs 返回组织（含自身）下的全部部门 ID
	GetSubDeptIDs(ctx context.Context, orgID int64, orgType OrgType) ([]int64, error)
	// GetDepartment 查询部门
	GetDepartment(ctx context.Context, deptID int64) (*Department, error)
}

// PositionService 职位服务
type PositionService interface {
	GetPosition(ctx context.Context, positionID int64) (*Position, error)
}
