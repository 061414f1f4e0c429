package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pu-ac-cn/rbac-backend/internal/database"
	"github.com/pu-ac-cn/rbac-backend/internal/lookup"
	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// newTestDB 创建独立的内存数据库
func newTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func int64Ptr(v int64) *int64 { return &v }

func statusPtr(s model.Status) *model.Status { return &s }

// fakeOrgService 内存组织服务
type fakeOrgService struct {
	mu       sync.Mutex
	depts    map[int64]string
	subDepts map[int64][]int64
	failing  map[int64]bool // 返回 ErrUnavailable 的部门
	calls    atomic.Int32
}

func newFakeOrgService() *fakeOrgService {
	return &fakeOrgService{
		depts:    map[int64]string{1: "总经办", 2: "研发部", 3: "财务部", 4: "市场部"},
		subDepts: map[int64][]int64{},
		failing:  map[int64]bool{},
	}
}

func (f *fakeOrgService) GetSubDeptIDs(ctx context.Context, orgID int64, orgType lookup.OrgType) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subDepts[orgID], nil
}

func (f *fakeOrgService) GetDepartment(ctx context.Context, deptID int64) (*lookup.Department, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[deptID] {
		return nil, lookup.ErrUnavailable
	}
	name, ok := f.depts[deptID]
	if !ok {
		return nil, lookup.ErrNotFound
	}
	return &lookup.Department{ID: deptID, Name: name}, nil
}

// fakePositionService 内存职位服务
type fakePositionService struct {
	positions map[int64]string
}

func newFakePositionService() *fakePositionService {
	return &fakePositionService{positions: map[int64]string{1: "工程师", 2: "经理"}}
}

func (f *fakePositionService) GetPosition(ctx context.Context, positionID int64) (*lookup.Position, error) {
	name, ok := f.positions[positionID]
	if !ok {
		return nil, lookup.ErrNotFound
	}
	return &lookup.Position{ID: positionID, Name: name}, nil
}

// MockOrganizationService 组织服务 Mock
type MockOrganizationService struct {
	mock.Mock
}

func (m *MockOrganizationService) GetSubDeptIDs(ctx context.Context, orgID int64, orgType lookup.OrgType) ([]int64, error) {
	args := m.Called(ctx, orgID, orgType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockOrganizationService) GetDepartment(ctx context.Context, deptID int64) (*lookup.Department, error) {
	args := m.Called(ctx, deptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lookup.Department), args.Error(1)
}

// testEnv 服务测试环境
type testEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	roles      repository.RoleRepository
	perms      repository.PermissionRepository
	orgs       *fakeOrgService
	positions  *fakePositionService
	enricher   *Enricher
	compositor *QueryCompositor
	resolver   *EligibilityResolver
	userSvc    UserService
	roleSvc    RoleService
	logs       *observer.ObservedLogs
}

func newTestEnv(t testing.TB, policy EnrichPolicy) *testEnv {
	t.Helper()
	db := newTestDB(t)
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	env := &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		roles:     repository.NewRoleRepository(db),
		perms:     repository.NewPermissionRepository(db),
		orgs:      newFakeOrgService(),
		positions: newFakePositionService(),
		logs:      logs,
	}
	env.enricher = NewEnricher(env.orgs, env.positions, policy, 4, log)
	env.compositor = NewQueryCompositor(env.users, env.orgs, env.enricher)
	env.resolver = NewEligibilityResolver(env.users, env.roles, env.enricher)
	domain := NewUserDomainService(env.users, env.resolver, env.compositor, env.enricher, log)
	env.userSvc = NewUserService(env.users, domain, NewIdentityChecker(env.users), env.resolver, env.compositor, log)
	env.roleSvc = NewRoleService(env.roles, env.perms, env.users, NewPermissionTreeBuilder(env.perms, log), env.enricher, log)
	return env
}

// createUser 通过服务新增员工
func (e *testEnv) createUser(t testing.TB, name string, deptID int64, roleIDs ...int64) *model.UserInfo {
	t.Helper()
	user, err := e.userSvc.Create(context.Background(), &CreateUserInput{
		UserName:    name,
		ChineseName: "员工" + name,
		Phone:       "tel-" + name,
		Email:       name + "@example.com",
		Password:    "secret123",
		DeptID:      deptID,
		PositionID:  1,
		RoleIDs:     roleIDs,
	}, 1)
	require.NoError(t, err)
	return user
}

// createRole 直接写入角色
func (e *testEnv) createRole(t testing.TB, name string, deptID *int64) *model.Role {
	t.Helper()
	role := &model.Role{Name: name, DeptID: deptID, Status: model.StatusValid}
	require.NoError(t, e.roles.Create(context.Background(), role))
	return role
}
