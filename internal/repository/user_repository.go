package repository

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrEmailRegistered
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, translate(err, util.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err, util.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateScope 替换角色和分配范围，不修改宝石和凭据
func (r *UserRepository) UpdateScope(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(user).
		Select("role", "assigned_universities", "assigned_faculties", "assigned_departments", "assigned_levels").
		Updates(user).Error
}

type UserFilter struct {
	Role     model.UserRole
	Search   string
	Page     int
	PageSize int
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64
	query := r.DB.WithContext(ctx).Model(&model.User{})
	if f.Role != "" {
		query = query.Where("role = ?", f.Role)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Page > 0 && f.PageSize > 0 {
		query = query.Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize)
	}
	err := query.Order("created_at desc").Find(&users).Error
	return users, total, err
}

func (r *UserRepository) SetDisabled(ctx context.Context, id uint, disabled bool) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("disabled", disabled).Error
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}
