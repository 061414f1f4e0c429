package service

import (
	"context"
	"errors"
	"io"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"go.uber.org/zap"
)

// UserService 员工服务接口
type UserService interface {
	Create(ctx context.Context, input *CreateUserInput, operatorID int64) (*model.UserInfo, error)
	Update(ctx context.Context, input *UpdateUserInput, operatorID int64) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*UserOutput, error)
	Query(ctx context.Context, input *QueryUserInput) (*PageResult[*UserOutput], error)
	UpdateStatus(ctx context.Context, input *UpdateUserStatusInput, operatorID int64) error
	ResetPassword(ctx context.Context, input *ResetPasswordInput, operatorID int64) error
	GetDepartmentUser(ctx context.Context, deptID int64) ([]*UserOutput, error)
	GetCorporationUser(ctx context.Context, corporationID int64) ([]*UserOutput, error)
	QueryUserRoles(ctx context.Context, input *QueryUserRoleInput) ([]*UserRoleOutput, error)
	Export(ctx context.Context, input *ExportUserInput, w io.Writer) error
}

type userService struct {
	users      repository.UserRepository
	domain     UserDomainService
	identity   *IdentityChecker
	resolver   *EligibilityResolver
	compositor *QueryCompositor
	logger     *zap.Logger
}

// NewUserService 创建员工服务
func NewUserService(users repository.UserRepository, domain UserDomainService, identity *IdentityChecker, resolver *EligibilityResolver, compositor *QueryCompositor, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		users:      users,
		domain:     domain,
		identity:   identity,
		resolver:   resolver,
		compositor: compositor,
		logger:     logger,
	}
}

// Create 新增员工：参数校验 -> 唯一性检查 -> 写入
func (s *userService) Create(ctx context.Context, input *CreateUserInput, operatorID int64) (*model.UserInfo, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.identity.Check(ctx, Identity{UserName: input.UserName, Phone: input.Phone, Email: input.Email}); err != nil {
		return nil, err
	}
	return s.domain.Create(ctx, input, operatorID)
}

func (s *userService) Update(ctx context.Context, input *UpdateUserInput, operatorID int64) error {
	if err := validateInput(input); err != nil {
		return err
	}
	existing, err := s.getUser(ctx, input.ID)
	if err != nil {
		return err
	}
	if err := s.identity.CheckExcept(ctx, input.ID, Identity{UserName: existing.UserName, Phone: input.Phone, Email: input.Email}); err != nil {
		return err
	}
	return s.domain.Update(ctx, input, operatorID)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if _, err := s.getUser(ctx, id); err != nil {
		return err
	}
	return s.domain.Delete(ctx, id)
}

func (s *userService) Get(ctx context.Context, id int64) (*UserOutput, error) {
	return s.domain.GetUserNormInfoByID(ctx, id)
}

// Query 分页查询员工
func (s *userService) Query(ctx context.Context, input *QueryUserInput) (*PageResult[*UserOutput], error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.compositor.Query(ctx, UserQuery{
		Filter:  &repository.UserFilter{SearchKey: input.SearchKey},
		OrgID:   input.OrgID,
		OrgType: input.OrgType,
		Page:    &repository.Pagination{Page: input.Page, PageSize: input.PageSize},
	})
}

// UpdateStatus 激活或冻结账号
func (s *userService) UpdateStatus(ctx context.Context, input *UpdateUserStatusInput, operatorID int64) error {
	if err := validateInput(input); err != nil {
		return err
	}
	if _, err := s.getUser(ctx, input.ID); err != nil {
		return err
	}
	if err := s.users.UpdateStatus(ctx, input.ID, *input.Status, operatorID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(EntityUser, input.ID)
		}
		return err
	}
	s.logger.Info("更新账号状态",
		zap.Int64("user_id", input.ID),
		zap.Stringer("status", *input.Status),
		zap.Int64("operator_id", operatorID),
	)
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, input *ResetPasswordInput, operatorID int64) error {
	if err := validateInput(input); err != nil {
		return err
	}
	user, err := s.getUser(ctx, input.ID)
	if err != nil {
		return err
	}
	return s.domain.ResetPassword(ctx, user, input.NewPassword, operatorID)
}

// GetDepartmentUser 查询部门下的员工
func (s *userService) GetDepartmentUser(ctx context.Context, deptID int64) ([]*UserOutput, error) {
	return s.usersInDept(ctx, deptID)
}

// GetCorporationUser 查询直接挂在公司下的员工
func (s *userService) GetCorporationUser(ctx context.Context, corporationID int64) ([]*UserOutput, error) {
	return s.usersInDept(ctx, corporationID)
}

func (s *userService) usersInDept(ctx context.Context, deptID int64) ([]*UserOutput, error) {
	users, err := s.users.FindAll(ctx, &repository.UserFilter{DeptID: &deptID})
	if err != nil {
		return nil, err
	}
	return s.compositor.Enrich(ctx, users, false)
}

// QueryUserRoles 查询用户或部门可分配的角色
func (s *userService) QueryUserRoles(ctx context.Context, input *QueryUserRoleInput) ([]*UserRoleOutput, error) {
	return s.resolver.Resolve(ctx, *input)
}

// Export 导出符合条件的全部员工
func (s *userService) Export(ctx context.Context, input *ExportUserInput, w io.Writer) error {
	if err := validateInput(input); err != nil {
		return err
	}
	result, err := s.compositor.Query(ctx, UserQuery{
		Filter:  &repository.UserFilter{SearchKey: input.SearchKey},
		OrgID:   input.OrgID,
		OrgType: input.OrgType,
	})
	if err != nil {
		return err
	}
	return writeUsersXLSX(result.Items, w)
}

func (s *userService) getUser(ctx context.Context, id int64) (*model.UserInfo, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound(EntityUser, id)
		}
		return nil, err
	}
	return user, nil
}
