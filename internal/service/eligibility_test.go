package service

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEligibilityResolver_RequiresUserOrDept(t *testing.T) {
	db := newTestDB(t)
	orgs := new(MockOrganizationService)
	enricher := NewEnricher(orgs, newFakePositionService(), PolicyLenient, 2, zap.NewNop())
	resolver := NewEligibilityResolver(repository.NewUserRepository(db), repository.NewRoleRepository(db), enricher)

	for _, input := range []QueryUserRoleInput{
		{},
		{UserID: int64Ptr(0)},
	} {
		_, err := resolver.Resolve(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	orgs.AssertNotCalled(t, "GetDepartment", mock.Anything, mock.Anything)
}

func TestEligibilityResolver_UserNotFound(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)

	_, err := env.resolver.Resolve(context.Background(), QueryUserRoleInput{UserID: int64Ptr(99)})
	require.ErrorIs(t, err, ErrNotFound)
	de, _ := AsDomainError(err)
	assert.Equal(t, int64(99), de.Value)
}

func TestEligibilityResolver_UserBranch(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	global := env.createRole(t, "全局", nil)
	zero := env.createRole(t, "零范围", int64Ptr(0))
	rd := env.createRole(t, "研发", int64Ptr(2))
	env.createRole(t, "财务", int64Ptr(3))

	user := env.createUser(t, "alice", 2, global.ID, rd.ID)

	// 同时提供部门 ID 时以用户所在部门为准
	outputs, err := env.resolver.Resolve(context.Background(), QueryUserRoleInput{
		UserID: int64Ptr(user.ID),
		DeptID: int64Ptr(3),
	})
	require.NoError(t, err)
	require.Len(t, outputs, 3)

	byID := make(map[int64]*UserRoleOutput)
	for _, o := range outputs {
		byID[o.RoleID] = o
	}
	assert.Equal(t, CheckStatusChecked, byID[global.ID].CheckStatus)
	assert.Equal(t, CheckStatusUnChecked, byID[zero.ID].CheckStatus)
	assert.Equal(t, CheckStatusChecked, byID[rd.ID].CheckStatus)
	assert.Equal(t, "研发部", byID[rd.ID].DeptName)
	assert.Empty(t, byID[global.ID].DeptName)
}

func TestEligibilityResolver_DeptBranch(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	global := env.createRole(t, "全局", nil)
	rd := env.createRole(t, "研发", int64Ptr(2))
	env.createRole(t, "财务", int64Ptr(3))
	env.createUser(t, "alice", 2, global.ID, rd.ID)

	// 用户 ID 为 0 视为未提供
	outputs, err := env.resolver.Resolve(context.Background(), QueryUserRoleInput{
		UserID: int64Ptr(0),
		DeptID: int64Ptr(2),
	})
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	for _, o := range outputs {
		assert.Equal(t, CheckStatusUnChecked, o.CheckStatus)
	}
}

func TestEligibilityResolver_DeptNameLenient(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	env.createRole(t, "研发", int64Ptr(2))
	env.orgs.failing[2] = true

	outputs, err := env.resolver.Resolve(context.Background(), QueryUserRoleInput{DeptID: int64Ptr(2)})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Empty(t, outputs[0].DeptName)
	assert.Equal(t, 1, env.logs.FilterMessage("补全字段失败").Len())
}

func TestCanAssign(t *testing.T) {
	assert.True(t, CanAssign(&model.Role{}, 5))
	assert.True(t, CanAssign(&model.Role{DeptID: int64Ptr(0)}, 5))
	assert.True(t, CanAssign(&model.Role{DeptID: int64Ptr(5)}, 5))
	assert.False(t, CanAssign(&model.Role{DeptID: int64Ptr(6)}, 5))
}

// Property: 全局角色总在可分配集合中，其他部门的角色永远不在
func TestProperty_EligibleRolesRespectScope(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("可分配集合等于全局角色加本部门角色", prop.ForAll(
		func(scopes []int64, target int64) bool {
			env := newTestEnv(t, PolicyLenient)
			want := make(map[int64]bool)
			for i, scope := range scopes {
				var deptID *int64
				// -1 表示 NULL
				if scope >= 0 {
					deptID = int64Ptr(scope)
				}
				role := env.createRole(t, "role-"+string(rune('a'+i)), deptID)
				if scope <= 0 || scope == target {
					want[role.ID] = true
				}
			}

			outputs, err := env.resolver.Resolve(context.Background(), QueryUserRoleInput{DeptID: int64Ptr(target)})
			if err != nil || len(outputs) != len(want) {
				return false
			}
			for _, o := range outputs {
				if !want[o.RoleID] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.Int64Range(-1, 4)),
		gen.Int64Range(1, 4),
	))

	properties.TestingRun(t)
}
