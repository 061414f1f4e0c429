package service

import (
	"context"
	"errors"

	"github.com/pu-ac-cn/rbac-backend/internal/model"
	"github.com/pu-ac-cn/rbac-backend/internal/repository"
	"go.uber.org/zap"
)

// UserDomainService 员工领域服务，负责持久化与跨实体约束
type UserDomainService interface {
	Create(ctx context.Context, input *CreateUserInput, operatorID int64) (*model.UserInfo, error)
	Update(ctx context.Context, input *UpdateUserInput, operatorID int64) error
	Delete(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, user *model.UserInfo, newPassword string, operatorID int64) error
	GetUserRoles(ctx context.Context, userID int64) ([]*model.Role, error)
	GetUserNormInfoByID(ctx context.Context, id int64) (*UserOutput, error)
}

type userDomainService struct {
	users      repository.UserRepository
	resolver   *EligibilityResolver
	compositor *QueryCompositor
	writeCheck *Enricher // 写路径使用 strict 策略
	logger     *zap.Logger
}

// NewUserDomainService 创建员工领域服务
func NewUserDomainService(users repository.UserRepository, resolver *EligibilityResolver, compositor *QueryCompositor, enricher *Enricher, logger *zap.Logger) UserDomainService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userDomainService{
		users:      users,
		resolver:   resolver,
		compositor: compositor,
		writeCheck: enricher.Strict(),
		logger:     logger,
	}
}

// Create 新增员工，新账号为冻结状态，需显式激活
func (s *userDomainService) Create(ctx context.Context, input *CreateUserInput, operatorID int64) (*model.UserInfo, error) {
	if err := s.checkOrganization(ctx, input.DeptID, input.PositionID); err != nil {
		return nil, err
	}
	if err := s.resolver.checkAssignable(ctx, input.RoleIDs, input.DeptID); err != nil {
		return nil, err
	}

	user := &model.UserInfo{
		UserName:    input.UserName,
		ChineseName: input.ChineseName,
		Phone:       input.Phone,
		Email:       input.Email,
		DeptID:      input.DeptID,
		PositionID:  input.PositionID,
		Memo:        input.Memo,
		Status:      model.StatusInvalid,
	}
	user.Touch(operatorID)
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user, input.RoleIDs); err != nil {
		return nil, err
	}
	s.logger.Info("新增员工",
		zap.Int64("user_id", user.ID),
		zap.String("user_name", user.UserName),
		zap.Int64("operator_id", operatorID),
	)
	return user, nil
}

// Update 更新员工资料及角色
func (s *userDomainService) Update(ctx context.Context, input *UpdateUserInput, operatorID int64) error {
	existing, err := s.getUser(ctx, input.ID)
	if err != nil {
		return err
	}
	if err := s.checkOrganization(ctx, input.DeptID, input.PositionID); err != nil {
		return err
	}

	roleIDs := input.RoleIDs
	if roleIDs == nil && existing.DeptID != input.DeptID {
		// 调整部门时原有角色也必须能分配给新部门
		held, err := s.users.GetRoles(ctx, input.ID)
		if err != nil {
			return err
		}
		for _, role := range held {
			if !CanAssign(role, input.DeptID) {
				return &DomainError{
					Kind:   ErrInvalidRequest,
					Entity: EntityRole,
					Field:  "dept_id",
					Value:  input.DeptID,
					Msg:    "员工已拥有的角色" + role.Name + "不能分配给新部门",
				}
			}
		}
	}
	if err := s.resolver.checkAssignable(ctx, roleIDs, input.DeptID); err != nil {
		return err
	}

	existing.ChineseName = input.ChineseName
	existing.Phone = input.Phone
	existing.Email = input.Email
	existing.DeptID = input.DeptID
	existing.PositionID = input.PositionID
	existing.Memo = input.Memo
	existing.Touch(operatorID)

	if err := s.users.Update(ctx, existing, roleIDs); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(EntityUser, input.ID)
		}
		return err
	}
	return nil
}

func (s *userDomainService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(EntityUser, id)
		}
		return err
	}
	return nil
}

// ResetPassword 重置密码，哈希后存储
func (s *userDomainService) ResetPassword(ctx context.Context, user *model.UserInfo, newPassword string, operatorID int64) error {
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, user.Password, operatorID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(EntityUser, user.ID)
		}
		return err
	}
	return nil
}

func (s *userDomainService) GetUserRoles(ctx context.Context, userID int64) ([]*model.Role, error) {
	return s.users.GetRoles(ctx, userID)
}

// GetUserNormInfoByID 查询员工详情，含部门、职位及角色
func (s *userDomainService) GetUserNormInfoByID(ctx context.Context, id int64) (*UserOutput, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.compositor.EnrichOne(ctx, user)
}

func (s *userDomainService) getUser(ctx context.Context, id int64) (*model.UserInfo, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound(EntityUser, id)
		}
		return nil, err
	}
	return user, nil
}

// checkOrganization 写入前确认部门与职位存在
func (s *userDomainService) checkOrganization(ctx context.Context, deptID, positionID int64) error {
	if err := s.writeCheck.requireDepartment(ctx, deptID); err != nil {
		return err
	}
	return s.writeCheck.requirePosition(ctx, positionID)
}
