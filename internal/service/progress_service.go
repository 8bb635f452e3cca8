package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"
	"elearn_backend/pkg/tracing"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ProgressService struct {
	Repo        *repository.ProgressRepository
	Courses     *repository.CourseRepository
	GemsPerUnit int
}

func NewProgressService(repo *repository.ProgressRepository, courses *repository.CourseRepository, gemsPerUnit int) *ProgressService {
	return &ProgressService{Repo: repo, Courses: courses, GemsPerUnit: gemsPerUnit}
}

// CompleteUnit 标记单元完成，宝石只在第一次发放，
// 同一（用户, 单元）的重复或并发调用返回 alreadyCompleted
func (s *ProgressService) CompleteUnit(ctx context.Context, userID uint, courseID, unitID string) (result *model.UnitCompletionResult, err error) {
	ctx, end := tracing.Start(ctx, "ProgressService.CompleteUnit",
		attribute.String("course.id", courseID),
		attribute.String("unit.id", unitID),
	)
	defer func() { end(err) }()

	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return nil, err
	}
	if _, err := s.Courses.FindUnit(ctx, courseID, unitID); err != nil {
		return nil, err
	}

	awarded, total, err := s.Repo.CompleteUnit(ctx, userID, courseID, unitID, s.GemsPerUnit)
	if err != nil {
		return nil, err
	}

	if !awarded {
		return &model.UnitCompletionResult{AlreadyCompleted: true, GemsAwarded: 0, TotalGems: total}, nil
	}

	monitoring.UnitsCompleted.Inc()
	monitoring.GemsAwarded.Add(float64(s.GemsPerUnit))
	logger.Log.Info("unit completed",
		zap.Uint("userId", userID),
		zap.String("courseId", courseID),
		zap.String("unitId", unitID),
		zap.Int("gems", s.GemsPerUnit),
	)
	return &model.UnitCompletionResult{AlreadyCompleted: false, GemsAwarded: s.GemsPerUnit, TotalGems: total}, nil
}

// GetCourseProgress 按顺序列出课程所有单元及用户完成状态
func (s *ProgressService) GetCourseProgress(ctx context.Context, userID uint, courseID string) (*model.CourseProgress, error) {
	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return nil, err
	}
	units, err := s.Courses.ListUnits(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.Repo.CompletedUnitIDs(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	done := make(map[string]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		done[id] = struct{}{}
	}

	progress := &model.CourseProgress{
		CourseID:    courseID,
		UnitDetails: make([]model.UnitProgress, 0, len(units)),
		TotalUnits:  len(units),
	}
	for _, u := range units {
		_, completed := done[u.ID]
		if completed {
			progress.CompletedUnits++
		}
		progress.UnitDetails = append(progress.UnitDetails, model.UnitProgress{
			UnitID:    u.ID,
			Title:     u.Title,
			Order:     u.Order,
			Completed: completed,
		})
	}
	if progress.TotalUnits > 0 {
		pct := float64(progress.CompletedUnits) / float64(progress.TotalUnits) * 100
		progress.Percentage = math.Round(pct*100) / 100
	}
	return progress, nil
}
