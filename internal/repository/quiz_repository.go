package repository

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return duplicateTrigger(r.DB.WithContext(ctx).Create(q).Error, "a quiz")
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if err != nil {
		return nil, translate(err, util.ErrQuizNotFound)
	}
	return &q, nil
}

func (r *QuizRepository) FindByTrigger(ctx context.Context, courseID, triggerKey string) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.WithContext(ctx).
		Where("course_id = ? AND trigger_key = ?", courseID, triggerKey).
		First(&q).Error
	if err != nil {
		return nil, translate(err, util.ErrQuizNotFound)
	}
	return &q, nil
}

type QuizFilter struct {
	CourseID   string
	Difficulty model.QuizDifficulty
	Category   string
	Active     *bool
}

func (r *QuizRepository) List(ctx context.Context, f QuizFilter) ([]model.Quiz, error) {
	var qs []model.Quiz
	query := r.DB.WithContext(ctx).Model(&model.Quiz{})
	if f.CourseID != "" {
		query = query.Where("course_id = ?", f.CourseID)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}
	err := query.Order("updated_at asc").Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	return duplicateTrigger(r.DB.WithContext(ctx).Save(q).Error, "a quiz")
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Quiz{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) CreateAttempt(ctx context.Context, a *model.QuizAttempt) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *QuizRepository) AttemptsForUser(ctx context.Context, userID uint, quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at desc").
		Find(&attempts).Error
	return attempts, err
}
