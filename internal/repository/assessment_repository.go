package repository

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func duplicateTrigger(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.NewConflictError("%s already exists for this trigger", what)
	}
	return err
}

func (r *AssessmentRepository) Create(ctx context.Context, a *model.Assessment) error {
	return duplicateTrigger(r.DB.WithContext(ctx).Create(a).Error, "an assessment of this type")
}

func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, translate(err, util.ErrAssessmentNotFound)
	}
	return &a, nil
}

// FindByTrigger 查找占用（courseID, triggerKey, type）的测评
func (r *AssessmentRepository) FindByTrigger(ctx context.Context, courseID, triggerKey string, t model.AssessmentType) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.WithContext(ctx).
		Where("course_id = ? AND trigger_key = ? AND type = ?", courseID, triggerKey, t).
		First(&a).Error
	if err != nil {
		return nil, translate(err, util.ErrAssessmentNotFound)
	}
	return &a, nil
}

type AssessmentFilter struct {
	CourseID string
	Type     model.AssessmentType
	Active   *bool
}

func (r *AssessmentRepository) List(ctx context.Context, f AssessmentFilter) ([]model.Assessment, error) {
	var as []model.Assessment
	query := r.DB.WithContext(ctx).Model(&model.Assessment{})
	if f.CourseID != "" {
		query = query.Where("course_id = ?", f.CourseID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}
	err := query.Order("updated_at asc").Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) Update(ctx context.Context, a *model.Assessment) error {
	return duplicateTrigger(r.DB.WithContext(ctx).Save(a).Error, "an assessment of this type")
}

func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Assessment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAssessmentNotFound
	}
	return nil
}

func (r *AssessmentRepository) CreateResult(ctx context.Context, result *model.Result) error {
	return r.DB.WithContext(ctx).Create(result).Error
}

func (r *AssessmentRepository) ResultsForUser(ctx context.Context, userID uint) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempted_at desc").
		Find(&results).Error
	return results, err
}

func (r *AssessmentRepository) ResultsForCourse(ctx context.Context, courseID string) ([]model.Result, error) {
	var results []model.Result
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("user_id asc, attempted_at desc").
		Find(&results).Error
	return results, err
}
