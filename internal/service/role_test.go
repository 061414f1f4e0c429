package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPermissions 写入权限树：
//
//	100 系统管理
//	├── 101 用户管理
//	│   └── 103 新增用户
//	└── 102 角色管理
//	200 报表
//	└── 201 导出
func seedPermissions(t *testing.T, env *testEnv) {
	t.Helper()
	nodes := []*model.Permission{
		perm(100, 0, 1), perm(101, 100, 1), perm(102, 100, 2), perm(103, 101, 1),
		perm(200, 0, 2), perm(201, 200, 1),
	}
	for _, p := range nodes {
		p.Code = fmt.Sprintf("perm.%d", p.ID)
		require.NoError(t, env.perms.Create(context.Background(), p))
	}
}

func TestRoleService_DeleteMissingRole(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	existing := env.createRole(t, "保留", nil)

	err := env.roleSvc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	de, _ := AsDomainError(err)
	assert.Equal(t, int64(42), de.Value)

	_, err = env.roles.GetByID(context.Background(), existing.ID)
	assert.NoError(t, err)
}

func TestRoleService_SetPermissionsScenario(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	seedPermissions(t, env)
	role := &model.Role{Name: "管理员", Status: model.StatusValid}
	role.ID = 7
	require.NoError(t, env.roles.Create(ctx, role))

	require.NoError(t, env.roleSvc.SetPermissions(ctx, &SetRolePermissionInput{RoleID: 7, PermissionIDs: []int64{101, 102}}, 1))

	tree, err := env.roleSvc.GetRolePermissions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	root := tree[0]
	assert.Equal(t, int64(100), root.ID)
	assert.False(t, root.Granted)
	assert.Equal(t, []int64{101, 102}, childIDs(root.Children))
	assert.True(t, root.Children[0].Granted)
	assert.Empty(t, root.Children[0].Children)

	// 整体替换
	require.NoError(t, env.roleSvc.SetPermissions(ctx, &SetRolePermissionInput{RoleID: 7, PermissionIDs: []int64{201}}, 1))
	granted, err := env.roles.GetPermissionIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{201}, granted)

	// 未知权限不修改已有授权
	err = env.roleSvc.SetPermissions(ctx, &SetRolePermissionInput{RoleID: 7, PermissionIDs: []int64{201, 999}}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	granted, _ = env.roles.GetPermissionIDs(ctx, 7)
	assert.Equal(t, []int64{201}, granted)

	err = env.roleSvc.SetPermissions(ctx, &SetRolePermissionInput{RoleID: 8, PermissionIDs: []int64{201}}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoleService_PermissionTreeMarksGranted(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	seedPermissions(t, env)
	role := env.createRole(t, "审计", nil)
	require.NoError(t, env.roleSvc.SetPermissions(ctx, &SetRolePermissionInput{RoleID: role.ID, PermissionIDs: []int64{103}}, 1))

	tree, err := env.roleSvc.PermissionTree(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, childIDs(tree))

	granted := map[int64]bool{}
	var walk func([]*PermissionTreeNode)
	walk = func(nodes []*PermissionTreeNode) {
		for _, n := range nodes {
			granted[n.ID] = n.Granted
			walk(n.Children)
		}
	}
	walk(tree)
	assert.Len(t, granted, 6)
	assert.True(t, granted[103])
	assert.False(t, granted[101])
}

func TestRoleService_CreateAndUpdate(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()

	role, err := env.roleSvc.Create(ctx, &CreateRoleInput{Name: "研发", DeptID: int64Ptr(2)}, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusValid, role.Status)

	_, err = env.roleSvc.Create(ctx, &CreateRoleInput{Name: "研发"}, 1)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = env.roleSvc.Create(ctx, &CreateRoleInput{Name: "未知部门", DeptID: int64Ptr(42)}, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.roleSvc.Create(ctx, &CreateRoleInput{}, 1)
	assert.ErrorIs(t, err, ErrValidationFailure)

	// 员工在部门 2，角色不能收窄到部门 3
	env.createUser(t, "alice", 2, role.ID)
	err = env.roleSvc.Update(ctx, &UpdateRoleInput{ID: role.ID, Name: "研发", DeptID: int64Ptr(3)}, 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	require.NoError(t, env.roleSvc.Update(ctx, &UpdateRoleInput{ID: role.ID, Name: "研发二组", Memo: "备注"}, 1))
	out, err := env.roleSvc.Get(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "研发二组", out.Name)
	assert.Nil(t, out.DeptID)
}

func TestRoleService_QueryAndList(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	operator := env.createUser(t, "admin", 1)

	for _, in := range []*CreateRoleInput{
		{Name: "销售主管", Memo: "销售部门"},
		{Name: "销售专员", Memo: "一线"},
		{Name: "财务主管", Memo: "财务", DeptID: int64Ptr(3)},
	} {
		_, err := env.roleSvc.Create(ctx, in, operator.ID)
		require.NoError(t, err)
	}

	// 名称与备注都需要包含关键字
	page, err := env.roleSvc.Query(ctx, &QueryRoleInput{SearchKey: "销售", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, "销售主管", page.Items[0].Name)
	assert.Equal(t, "员工admin", page.Items[0].LastModificationUserName)

	all, err := env.roleSvc.Query(ctx, &QueryRoleInput{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), all.TotalCount)
	assert.Equal(t, "财务部", all.Items[2].DeptName)

	list, err := env.roleSvc.List(ctx, "主管")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRoleService_StatusAndDeleteCascade(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	role := env.createRole(t, "临时", nil)
	user := env.createUser(t, "alice", 2, role.ID)

	require.NoError(t, env.roleSvc.Status(ctx, &UpdateRoleStatusInput{ID: role.ID, Status: statusPtr(model.StatusInvalid)}, 1))
	stored, _ := env.roles.GetByID(ctx, role.ID)
	assert.Equal(t, model.StatusInvalid, stored.Status)

	err := env.roleSvc.Status(ctx, &UpdateRoleStatusInput{ID: 404, Status: statusPtr(model.StatusValid)}, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.roleSvc.Delete(ctx, role.ID))
	roles, err := env.users.GetRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
}
