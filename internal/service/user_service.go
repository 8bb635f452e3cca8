package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"

	"go.uber.org/zap"
)

// UserService 管理员侧的用户管理：列表和权限范围分配
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

// ScopeInput 替换用户的角色和分配范围
type ScopeInput struct {
	Role                 model.UserRole `json:"role" validate:"required,oneof=admin subadmin waec_admin jamb_admin user"`
	AssignedUniversities []string       `json:"assignedUniversities"`
	AssignedFaculties    []string       `json:"assignedFaculties"`
	AssignedDepartments  []string       `json:"assignedDepartments"`
	AssignedLevels       []string       `json:"assignedLevels"`
}

// GetUsers 分页返回用户及总数
func (s *UserService) GetUsers(ctx context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	return s.UserRepo.List(ctx, f)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

// LoadScope 根据用户记录构建 ScopeContext
func (s *UserService) LoadScope(ctx context.Context, userID uint) (ScopeContext, *model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return ScopeContext{}, nil, err
	}
	return ScopeFromUser(user), user, nil
}

func (s *UserService) UpdateScope(ctx context.Context, actor ScopeContext, id uint, in ScopeInput) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, util.NewAuthorizationError("only administrators can change user scope")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if actor.UserID == id && in.Role != model.RoleAdmin {
		return nil, util.NewValidationError("administrators cannot demote themselves")
	}

	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = in.Role
	user.AssignedUniversities = util.NormalizeSet(in.AssignedUniversities)
	user.AssignedFaculties = util.NormalizeSet(in.AssignedFaculties)
	user.AssignedDepartments = util.NormalizeSet(in.AssignedDepartments)
	user.AssignedLevels = util.NormalizeSet(in.AssignedLevels)

	if err := s.UserRepo.UpdateScope(ctx, user); err != nil {
		return nil, err
	}
	logger.Log.Info("user scope updated",
		zap.Uint("userId", id),
		zap.Uint("by", actor.UserID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// DisableUser 禁用或恢复用户登录
func (s *UserService) DisableUser(ctx context.Context, actor ScopeContext, id uint, disable bool) error {
	if actor.UserID == id {
		return util.NewValidationError("you cannot disable your own account")
	}
	if _, err := s.UserRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.UserRepo.SetDisabled(ctx, id, disable)
}
