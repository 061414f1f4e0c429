package service

import (
	"context"

	"github.com/pu-ac-cn/rbac-backend/internal/lookup"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
)

// UserQuery 员工查询条件
type UserQuery struct {
	Filter  *repository.UserFilter
	OrgID   int64          // 0 表示不按组织过滤
	OrgType lookup.OrgType // OrgID 非 0 时有效
	Page    *repository.Pagination
}

// QueryCompositor 分页查询并补全部门、职位、角色信息
type QueryCompositor struct {
	users    repository.UserRepository
	orgs     lookup.OrganizationService
	enricher *Enricher
}

// NewQueryCompositor 创建分页查询组合器
func NewQueryCompositor(users repository.UserRepository, orgs lookup.OrganizationService, enricher *Enricher) *QueryCompositor {
	return &QueryCompositor{users: users, orgs: orgs, enricher: enricher}
}

// Query 执行查询
// OrgID 为 0 时计数与分页在存储层同一快照内完成；
// 否则先查询组织下的部门集合，取出全部匹配记录后在内存中过滤并分页
func (c *QueryCompositor) Query(ctx context.Context, q UserQuery) (*PageResult[*UserOutput], error) {
	var (
		users []*model.UserInfo
		total int64
		err   error
	)
	if q.OrgID == 0 {
		users, total, err = c.users.Page(ctx, q.Filter, q.Page)
	} else {
		users, total, err = c.scopedPage(ctx, q)
	}
	if err != nil {
		return nil, err
	}

	items, err := c.Enrich(ctx, users, true)
	if err != nil {
		return nil, err
	}
	return &PageResult[*UserOutput]{Items: items, TotalCount: total}, nil
}

// scopedPage 组织范围查询
// TODO: 部门集合较大时改为在存储层使用 dept_id IN (...) 过滤
func (c *QueryCompositor) scopedPage(ctx context.Context, q UserQuery) ([]*model.UserInfo, int64, error) {
	orgType := q.OrgType
	if orgType == "" {
		orgType = lookup.OrgTypeCorporation
	}
	deptIDs, err := c.orgs.GetSubDeptIDs(ctx, q.OrgID, orgType)
	if err != nil {
		// 过滤条件无法降级
		return nil, 0, dependencyFailure(EntityDepartment, q.OrgID, err)
	}

	all, err := c.users.FindAll(ctx, q.Filter)
	if err != nil {
		return nil, 0, err
	}

	members := make(map[int64]struct{}, len(deptIDs))
	for _, id := range deptIDs {
		members[id] = struct{}{}
	}
	filtered := make([]*model.UserInfo, 0, len(all))
	for _, u := range all {
		if _, ok := members[u.DeptID]; ok {
			filtered = append(filtered, u)
		}
	}

	return pageSlice(filtered, q.Page), int64(len(filtered)), nil
}

// pageSlice 内存分页
func pageSlice[T any](items []T, page *repository.Pagination) []T {
	if !page.Valid() {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if page.PageSize < end-start {
		end = start + page.PageSize
	}
	return items[start:end]
}

// Enrich 补全员工列表，保持原有顺序
func (c *QueryCompositor) Enrich(ctx context.Context, users []*model.UserInfo, withRoles bool) ([]*UserOutput, error) {
	rows := make([]*UserOutput, len(users))
	b := c.enricher.newBatch()
	for i, u := range users {
		row := newUserOutput(u)
		rows[i] = row
		c.addUserTasks(b, row, withRoles)
	}
	if err := b.run(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// EnrichOne 补全单个员工
func (c *QueryCompositor) EnrichOne(ctx context.Context, user *model.UserInfo) (*UserOutput, error) {
	rows, err := c.Enrich(ctx, []*model.UserInfo{user}, true)
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

func (c *QueryCompositor) addUserTasks(b *batch, row *UserOutput, withRoles bool) {
	if row.DeptID != 0 {
		deptID := row.DeptID
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
	if row.PositionID != 0 {
		positionID := row.PositionID
		b.add(enrichTask{
			rowID:  row.ID,
			field:  "position_name",
			entity: EntityPosition,
			refID:  positionID,
			fetch: func(ctx context.Context) error {
				name, err := b.positionName(ctx, positionID)
				row.PositionName = name
				return err
			},
		})
	}
	if withRoles {
		b.add(enrichTask{
			rowID:  row.ID,
			field:  "roles",
			entity: EntityRole,
			refID:  row.ID,
			fetch: func(ctx context.Context) error {
				roles, err := c.users.GetRoles(ctx, row.ID)
				if err != nil {
					return err
				}
				row.Roles = make([]RoleBrief, 0, len(roles))
				for _, role := range roles {
					row.Roles = append(row.Roles, RoleBrief{ID: role.ID, Name: role.Name})
				}
				return nil
			},
		})
	}
}
