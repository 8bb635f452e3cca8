package repository

import (
	"context"
	"elearn_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// CompleteUnit 在同一事务中写入完成记录并增加宝石。插入依赖（用户, 单元）唯一索引，
// 重复调用（无论是否并发）不会插入也不会加宝石。
// awarded 表示本次调用是否完成插入
func (r *ProgressRepository) CompleteUnit(ctx context.Context, userID uint, courseID, unitID string, gems int) (awarded bool, totalGems int, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completion := &model.UnitCompletion{
			UserID:      userID,
			UnitID:      unitID,
			CourseID:    courseID,
			GemsAwarded: gems,
			CompletedAt: time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(completion)
		if res.Error != nil {
			return res.Error
		}
		awarded = res.RowsAffected > 0

		if awarded {
			if err := tx.Model(&model.User{}).
				Where("id = ?", userID).
				UpdateColumn("gems", gorm.Expr("gems + ?", gems)).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&model.Enrollment{UserID: userID, CourseID: courseID}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.User{}).Select("gems").Where("id = ?", userID).Scan(&totalGems).Error
	})
	return awarded, totalGems, err
}

func (r *ProgressRepository) CompletedUnitIDs(ctx context.Context, userID uint, courseID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.UnitCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Pluck("unit_id", &ids).Error
	return ids, err
}

func (r *ProgressRepository) TotalGems(ctx context.Context, userID uint) (int, error) {
	var gems int
	err := r.DB.WithContext(ctx).Model(&model.User{}).Select("gems").Where("id = ?", userID).Scan(&gems).Error
	return gems, err
}
