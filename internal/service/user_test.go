package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestUserService_CreateScenario(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()

	user, err := env.userSvc.Create(ctx, &CreateUserInput{
		UserName:    "alice",
		ChineseName: "爱丽丝",
		Phone:       "555-1",
		Email:       "a@x.com",
		Password:    "secret123",
		DeptID:      2,
		PositionID:  1,
	}, 9)
	require.NoError(t, err)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	// 新账号需要显式激活
	assert.Equal(t, model.StatusInvalid, stored.Status)
	assert.True(t, stored.VerifyPassword("secret123"))
	require.NotNil(t, stored.LastModifierUserID)
	assert.Equal(t, int64(9), *stored.LastModifierUserID)

	_, err = env.userSvc.Create(ctx, &CreateUserInput{
		UserName:    "alice2",
		ChineseName: "爱丽丝",
		Phone:       "555-1",
		Email:       "b@x.com",
		Password:    "secret123",
		DeptID:      2,
		PositionID:  1,
	}, 9)
	require.ErrorIs(t, err, ErrDuplicateIdentity)
	de, _ := AsDomainError(err)
	assert.Equal(t, "phone", de.Field)
	assert.Equal(t, "555-1", de.Value)
}

func TestUserService_CreateValidation(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	valid := func() *CreateUserInput {
		return &CreateUserInput{
			UserName:    "bob",
			ChineseName: "鲍勃",
			Phone:       "555-2",
			Email:       "bob@x.com",
			Password:    "secret123",
			DeptID:      2,
			PositionID:  1,
		}
	}

	tests := []struct {
		name   string
		mutate func(*CreateUserInput)
		kind   error
		field  string
	}{
		{"用户名为空", func(in *CreateUserInput) { in.UserName = "" }, ErrValidationFailure, "user_name"},
		{"邮箱格式错误", func(in *CreateUserInput) { in.Email = "bob" }, ErrValidationFailure, "email"},
		{"密码太短", func(in *CreateUserInput) { in.Password = "123" }, ErrValidationFailure, "password"},
		{"部门不存在", func(in *CreateUserInput) { in.DeptID = 42 }, ErrNotFound, "id"},
		{"职位不存在", func(in *CreateUserInput) { in.PositionID = 42 }, ErrNotFound, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(in)
			_, err := env.userSvc.Create(ctx, in, 1)
			require.ErrorIs(t, err, tt.kind)
			de, _ := AsDomainError(err)
			assert.Equal(t, tt.field, de.Field)
		})
	}

	// 校验失败不写入任何数据
	all, err := env.users.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUserService_CreateDependencyFailureIsStrict(t *testing.T) {
	// 查询路径为 lenient，写路径仍然使用 strict
	env := newTestEnv(t, PolicyLenient)
	env.orgs.failing[2] = true

	_, err := env.userSvc.Create(context.Background(), &CreateUserInput{
		UserName:    "carol",
		ChineseName: "卡罗",
		Phone:       "555-3",
		Email:       "carol@x.com",
		Password:    "secret123",
		DeptID:      2,
		PositionID:  1,
	}, 1)
	assert.ErrorIs(t, err, ErrDependencyFailure)
}

func TestUserService_CreateRejectsOutOfScopeRole(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	finance := env.createRole(t, "财务", int64Ptr(3))

	_, err := env.userSvc.Create(context.Background(), &CreateUserInput{
		UserName:    "dave",
		ChineseName: "戴夫",
		Phone:       "555-4",
		Email:       "dave@x.com",
		Password:    "secret123",
		DeptID:      2,
		PositionID:  1,
		RoleIDs:     []int64{finance.ID},
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.userSvc.Create(context.Background(), &CreateUserInput{
		UserName:    "dave",
		ChineseName: "戴夫",
		Phone:       "555-4",
		Email:       "dave@x.com",
		Password:    "secret123",
		DeptID:      2,
		PositionID:  1,
		RoleIDs:     []int64{404},
	}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Update(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	rd := env.createRole(t, "研发", int64Ptr(2))
	global := env.createRole(t, "全局", nil)
	alice := env.createUser(t, "alice", 2, rd.ID)
	bob := env.createUser(t, "bob", 2)

	update := &UpdateUserInput{
		ID:          alice.ID,
		ChineseName: "爱丽丝",
		Phone:       "tel-alice",
		Email:       "alice@example.com",
		DeptID:      3,
		PositionID:  2,
	}

	// 原有角色只能分配给部门 2
	err := env.userSvc.Update(ctx, update, 5)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	update.RoleIDs = []int64{global.ID}
	require.NoError(t, env.userSvc.Update(ctx, update, 5))

	out, err := env.userSvc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "财务部", out.DeptName)
	assert.Equal(t, "经理", out.PositionName)
	assert.Equal(t, []RoleBrief{{ID: global.ID, Name: "全局"}}, out.Roles)

	// 与其他员工的手机号冲突
	update.Phone = "tel-bob"
	err = env.userSvc.Update(ctx, update, 5)
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	update.ID = bob.ID + 100
	err = env.userSvc.Update(ctx, update, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_DeleteStatusAndPassword(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	alice := env.createUser(t, "alice", 2)

	require.NoError(t, env.userSvc.UpdateStatus(ctx, &UpdateUserStatusInput{ID: alice.ID, Status: statusPtr(model.StatusValid)}, 3))
	stored, _ := env.users.GetByID(ctx, alice.ID)
	assert.True(t, stored.IsValid())

	err := env.userSvc.UpdateStatus(ctx, &UpdateUserStatusInput{ID: alice.ID, Status: statusPtr(model.Status(2))}, 3)
	assert.ErrorIs(t, err, ErrValidationFailure)
	err = env.userSvc.UpdateStatus(ctx, &UpdateUserStatusInput{ID: alice.ID}, 3)
	assert.ErrorIs(t, err, ErrValidationFailure)

	require.NoError(t, env.userSvc.ResetPassword(ctx, &ResetPasswordInput{ID: alice.ID, NewPassword: "newpass1"}, 3))
	stored, _ = env.users.GetByID(ctx, alice.ID)
	assert.True(t, stored.VerifyPassword("newpass1"))
	assert.False(t, stored.VerifyPassword("secret123"))

	err = env.userSvc.ResetPassword(ctx, &ResetPasswordInput{ID: 404, NewPassword: "newpass1"}, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.userSvc.Delete(ctx, alice.ID))
	err = env.userSvc.Delete(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_QueryScopes(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	seedDirect(t, env.users, 8)
	env.orgs.subDepts[5] = []int64{1, 2}

	_, err := env.userSvc.Query(ctx, &QueryUserInput{Page: 0, PageSize: 10})
	assert.ErrorIs(t, err, ErrValidationFailure)

	unscoped, err := env.userSvc.Query(ctx, &QueryUserInput{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(8), unscoped.TotalCount)

	scoped, err := env.userSvc.Query(ctx, &QueryUserInput{OrgID: 5, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), scoped.TotalCount)
	for _, row := range scoped.Items {
		assert.Contains(t, []int64{1, 2}, row.DeptID)
	}
}

func TestUserService_DepartmentAndCorporationUsers(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	seedDirect(t, env.users, 8)

	rows, err := env.userSvc.GetDepartmentUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "财务部", row.DeptName)
		assert.Nil(t, row.Roles)
	}

	rows, err = env.userSvc.GetCorporationUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUserService_Export(t *testing.T) {
	env := newTestEnv(t, PolicyLenient)
	ctx := context.Background()
	seedDirect(t, env.users, 3)

	var buf bytes.Buffer
	require.NoError(t, env.userSvc.Export(ctx, &ExportUserInput{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "user01", rows[1][1])
	assert.Equal(t, "总经办", rows[1][5])
	assert.Equal(t, "正常", rows[1][8])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("磁盘已满") }

func TestWriteUsersXLSX_ReturnsWriteError(t *testing.T) {
	rows := []*UserOutput{{ID: 1, UserName: "user01"}}

	err := writeUsersXLSX(rows, failingWriter{})
	assert.ErrorContains(t, err, "磁盘已满")

	var buf bytes.Buffer
	require.NoError(t, writeUsersXLSX(nil, &buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	width, err := f.GetColWidth(exportSheet, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(18), width)
}
