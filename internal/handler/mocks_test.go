package handler

import (
	"context"
	"io"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/service"
	"github.com/stretchr/testify/mock"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Create(ctx context.Context, input *service.CreateUserInput, operatorID int64) (*model.UserInfo, error) {
	args := m.Called(ctx, input, operatorID)
	user, _ := args.Get(0).(*model.UserInfo)
	return user, args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, input *service.UpdateUserInput, operatorID int64) error {
	return m.Called(ctx, input, operatorID).Error(0)
}

func (m *mockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserService) Get(ctx context.Context, id int64) (*service.UserOutput, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*service.UserOutput)
	return user, args.Error(1)
}

func (m *mockUserService) Query(ctx context.Context, input *service.QueryUserInput) (*service.PageResult[*service.UserOutput], error) {
	args := m.Called(ctx, input)
	result, _ := args.Get(0).(*service.PageResult[*service.UserOutput])
	return result, args.Error(1)
}

func (m *mockUserService) UpdateStatus(ctx context.Context, input *service.UpdateUserStatusInput, operatorID int64) error {
	return m.Called(ctx, input, operatorID).Error(0)
}

func (m *mockUserService) ResetPassword(ctx context.Context, input *service.ResetPasswordInput, operatorID int64) error {
	return m.Called(ctx, input, operatorID).Error(0)
}

func (m *mockUserService) GetDepartmentUser(ctx context.Context, deptID int64) ([]*service.UserOutput, error) {
	args := m.Called(ctx, deptID)
	users, _ := args.Get(0).([]*service.UserOutput)
	return users, args.Error(1)
}

func (m *mockUserService) GetCorporationUser(ctx context.Context, corporationID int64) ([]*service.UserOutput, error) {
	args := m.Called(ctx, corporationID)
	users, _ := args.Get(0).([]*service.UserOutput)
	return users, args.Error(1)
}

func (m *mockUserService) QueryUserRoles(ctx context.Context, input *service.QueryUserRoleInput) ([]*service.UserRoleOutput, error) {
	args := m.Called(ctx, input)
	roles, _ := args.Get(0).([]*service.UserRoleOutput)
	return roles, args.Error(1)
}

func (m *mockUserService) Export(ctx context.Context, input *service.ExportUserInput, w io.Writer) error {
	args := m.Called(ctx, input, w)
	if content, ok := args.Get(0).([]byte); ok {
		_, _ = w.Write(content)
	}
	return args.Error(1)
}

type mockRoleService struct {
	mock.Mock
}

func (m *mockRoleService) Create(ctx context.Context, input *service.CreateRoleInput, operatorID int64) (*model.Role, error) {
	args := m.Called(ctx, input, operatorID)
	role, _ := args.Get(0).(*model.Role)
	return role, args.Error(1)
}

func (m *mockRoleService) Update(ctx context.Context, input *service.UpdateRoleInput, operatorID int64) error {
	return m.Called(ctx, input, operatorID).Error(0)
}

func (m *mockRoleService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRoleService) Get(ctx context.Context, id int64) (*service.RoleOutput, error) {
	args := m.Called(ctx, id)
	role, _ := args.Get(0).(*service.RoleOutput)
	return role, args.Error(1)
}

func (m *mockRoleService) List(ctx context.Context, searchKey string) ([]*service.RoleOutput, error) {
	args := m.Called(ctx, searchKey)
	roles, _ := args.Get(0).([]*service.RoleOutput)
	return roles, args.Error(1)
}

func (m *mockRoleService) Query(ctx context.Context, input *service.QueryRoleInput) (*service.PageResult[*service.RoleOutput], error) {
	args := m.Called(ctx, input)
	result, _ := args.Get(0).(*service.PageResult[*service.RoleOutput])
	return result, args.Error(1)
}

func (m *mockRoleService) Status(ctx context.Context, input *service.UpdateRoleStatusInput, operatorID int64) error {
	return m.Called(ctx, input, operatorID).Error(0)
}

func (m *mockRoleService) SetPermissions(ctx context.Context, input *service.SetRolePermissionInput, operatorID int64) error {
	return m.Called(ctx, input, operatorID).Error(0)
}

func (m *mockRoleService) GetRolePermissions(ctx context.Context, id int64) ([]*service.PermissionTreeNode, error) {
	args := m.Called(ctx, id)
	nodes, _ := args.Get(0).([]*service.PermissionTreeNode)
	return nodes, args.Error(1)
}

func (m *mockRoleService) PermissionTree(ctx context.Context, roleID int64) ([]*service.PermissionTreeNode, error) {
	args := m.Called(ctx, roleID)
	nodes, _ := args.Get(0).([]*service.PermissionTreeNode)
	return nodes, args.Error(1)
}

type staticPermissions map[int64][]string

func (p staticPermissions) ListCodesByUser(_ context.Context, userID int64) ([]string, error) {
	return p[userID], nil
}
