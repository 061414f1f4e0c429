package service

import (
	"context"
	"sort"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"go.uber.org/zap"
)

// PermissionTreeNode 权限树节点
type PermissionTreeNode struct {
	ID       int64                 `json:"id"`
	ParentID *int64                `json:"parent_id,omitempty"`
	Name     string                `json:"name"`
	Code     string                `json:"code"`
	Type     string                `json:"type"`
	Path     string                `json:"path,omitempty"`
	Icon     string                `json:"icon,omitempty"`
	Sort     int                   `json:"sort"`
	Granted  bool                  `json:"granted"` // false 表示仅作为祖先节点补齐
	Children []*PermissionTreeNode `json:"children"`
}

// PermissionTreeBuilder 角色权限树构建器
type PermissionTreeBuilder struct {
	perms  repository.PermissionRepository
	logger *zap.Logger
}

// NewPermissionTreeBuilder 创建权限树构建器
func NewPermissionTreeBuilder(perms repository.PermissionRepository, logger *zap.Logger) *PermissionTreeBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionTreeBuilder{perms: perms, logger: logger}
}

// Build 构建角色的权限树，补齐所有祖先节点
func (b *PermissionTreeBuilder) Build(ctx context.Context, roleID int64) ([]*PermissionTreeNode, error) {
	granted, err := b.perms.ListByRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	arena := make(map[int64]*model.Permission, len(granted))
	grantedIDs := make(map[int64]bool, len(granted))
	for _, p := range granted {
		arena[p.ID] = p
		grantedIDs[p.ID] = true
	}

	// 逐层批量向上查找祖先，requested 防止重复请求同一个 ID
	requested := make(map[int64]bool)
	frontier := missingParents(granted, arena, requested)
	for len(frontier) > 0 {
		parents, err := b.perms.GetByIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			arena[p.ID] = p
		}
		frontier = missingParents(parents, arena, requested)
	}

	nodes := make([]*model.Permission, 0, len(arena))
	for _, p := range arena {
		nodes = append(nodes, p)
	}
	return assembleTree(nodes, grantedIDs, b.logger), nil
}

// BuildAll 构建完整权限树，grantedIDs 中的节点标记为已授予
func (b *PermissionTreeBuilder) BuildAll(ctx context.Context, grantedIDs map[int64]bool) ([]*PermissionTreeNode, error) {
	all, err := b.perms.List(ctx)
	if err != nil {
		return nil, err
	}
	return assembleTree(all, grantedIDs, b.logger), nil
}

// missingParents 返回尚未加载且未请求过的父节点 ID
func missingParents(nodes []*model.Permission, arena map[int64]*model.Permission, requested map[int64]bool) []int64 {
	var ids []int64
	for _, p := range nodes {
		if p.IsRoot() {
			continue
		}
		pid := *p.ParentID
		if _, ok := arena[pid]; ok || requested[pid] {
			continue
		}
		requested[pid] = true
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// assembleTree 按父 ID 索引组装树
// 父节点不存在的节点作为根节点；环中 ID 最小的节点作为根节点，断开指向它的边
func assembleTree(nodes []*model.Permission, grantedIDs map[int64]bool, logger *zap.Logger) []*PermissionTreeNode {
	index := make(map[int64]*model.Permission, len(nodes))
	for _, p := range nodes {
		index[p.ID] = p
	}

	ids := make([]int64, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	children := make(map[int64][]int64)
	var rootIDs []int64
	for _, id := range ids {
		p := index[id]
		if p.IsRoot() {
			rootIDs = append(rootIDs, id)
			continue
		}
		if _, ok := index[*p.ParentID]; !ok {
			logger.Warn("权限节点的父节点不存在，作为根节点处理",
				zap.Int64("permission_id", id),
				zap.Int64("parent_id", *p.ParentID),
			)
			rootIDs = append(rootIDs, id)
			continue
		}
		children[*p.ParentID] = append(children[*p.ParentID], id)
	}

	visited := make(map[int64]bool, len(index))
	var build func(id int64) *PermissionTreeNode
	build = func(id int64) *PermissionTreeNode {
		visited[id] = true
		node := newTreeNode(index[id], grantedIDs[id])
		for _, childID := range children[id] {
			if visited[childID] {
				continue
			}
			node.Children = append(node.Children, build(childID))
		}
		sortNodes(node.Children)
		return node
	}

	roots := make([]*PermissionTreeNode, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, build(id))
	}

	// 剩余未访问的节点都处在环上或挂在环下
	for _, id := range ids {
		if visited[id] {
			continue
		}
		root := lowestInCycle(id, index)
		logger.Warn("权限节点存在循环引用，断开后作为根节点处理",
			zap.Int64("permission_id", root),
			zap.Int64("parent_id", *index[root].ParentID),
		)
		roots = append(roots, build(root))
	}

	sortNodes(roots)
	return roots
}

// lowestInCycle 沿父链找到环，返回环上最小的 ID
func lowestInCycle(id int64, index map[int64]*model.Permission) int64 {
	seen := make(map[int64]bool)
	cur := id
	for !seen[cur] {
		seen[cur] = true
		cur = *index[cur].ParentID
	}

	lowest := cur
	for next := *index[cur].ParentID; next != cur; next = *index[next].ParentID {
		if next < lowest {
			lowest = next
		}
	}
	return lowest
}

func newTreeNode(p *model.Permission, granted bool) *PermissionTreeNode {
	return &PermissionTreeNode{
		ID:       p.ID,
		ParentID: p.ParentID,
		Name:     p.Name,
		Code:     p.Code,
		Type:     p.Type,
		Path:     p.Path,
		Icon:     p.Icon,
		Sort:     p.Sort,
		Granted:  granted,
		Children: []*PermissionTreeNode{},
	}
}

// sortNodes 按显示顺序排序，相同时按 ID
func sortNodes(nodes []*PermissionTreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Sort != nodes[j].Sort {
			return nodes[i].Sort < nodes[j].Sort
		}
		return nodes[i].ID < nodes[j].ID
	})
}
