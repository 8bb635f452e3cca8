package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type UnitInput struct {
	Title         string `json:"title" validate:"required,max=255"`
	Description   string `json:"description"`
	Order         *int   `json:"order" validate:"omitempty,min=1"`
	EstimatedTime int    `json:"estimatedTime" validate:"min=0"`
}

type UpdateUnitInput struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string `json:"description"`
	Order         *int    `json:"order" validate:"omitempty,min=1"`
	EstimatedTime *int    `json:"estimatedTime" validate:"omitempty,min=0"`
}

type PageInput struct {
	Title       string             `json:"title" validate:"max=255"`
	Order       *int               `json:"order" validate:"omitempty,min=1"`
	HTML        string             `json:"html" validate:"required"`
	AudioURL    string             `json:"audioUrl" validate:"omitempty,max=500"`
	VideoURL    string             `json:"videoUrl" validate:"omitempty,max=500"`
	Attachments []model.Attachment `json:"attachments" validate:"dive"`
}

type UpdatePageInput struct {
	Title       *string             `json:"title" validate:"omitempty,max=255"`
	Order       *int                `json:"order" validate:"omitempty,min=1"`
	HTML        *string             `json:"html" validate:"omitempty,min=1"`
	AudioURL    *string             `json:"audioUrl" validate:"omitempty"`
	VideoURL    *string             `json:"videoUrl" validate:"omitempty"`
	Attachments *[]model.Attachment `json:"attachments" validate:"omitempty,dive"`
}

func (s *CourseService) CreateUnit(ctx context.Context, scope ScopeContext, courseID string, in UnitInput) (unit *model.Unit, err error) {
	ctx, end := tracing.Start(ctx, "CourseService.CreateUnit", attribute.String("course.id", courseID))
	defer func() { end(err) }()

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	course, err := s.managedCourse(ctx, scope, courseID)
	if err != nil {
		return nil, err
	}

	order := 0
	if in.Order != nil {
		order = *in.Order
	}

	unit = &model.Unit{
		CourseID:      courseID,
		Title:         in.Title,
		Description:   strings.TrimSpace(in.Description),
		Order:         order,
		EstimatedTime: in.EstimatedTime,
	}
	if err := s.Repo.CreateUnit(ctx, unit, course.Structure.UnitCount); err != nil {
		return nil, err
	}
	unit.Pages = []model.Page{}
	s.Cache.Invalidate(ctx, courseID)

	logger.Log.Info("unit created",
		zap.String("courseId", courseID),
		zap.String("unitId", unit.ID),
		zap.Int("order", unit.Order),
	)
	return unit, nil
}

// ListUnits 按显示顺序返回课程单元
func (s *CourseService) ListUnits(ctx context.Context, scope ScopeContext, courseID string) ([]model.Unit, error) {
	if _, err := s.managedCourse(ctx, scope, courseID); err != nil {
		return nil, err
	}
	return s.Repo.ListUnits(ctx, courseID)
}

func (s *CourseService) GetUnit(ctx context.Context, scope ScopeContext, courseID, unitID string) (*model.Unit, error) {
	if _, err := s.managedCourse(ctx, scope, courseID); err != nil {
		return nil, err
	}
	unit, err := s.Repo.FindUnit(ctx, courseID, unitID)
	if err != nil {
		return nil, err
	}
	pages, err := s.Repo.ListPages(ctx, unitID)
	if err != nil {
		return nil, err
	}
	unit.Pages = pages
	return unit, nil
}

func (s *CourseService) UpdateUnit(ctx context.Context, scope ScopeContext, courseID, unitID string, in UpdateUnitInput) (unit *model.Unit, err error) {
	ctx, end := tracing.Start(ctx, "CourseService.UpdateUnit", attribute.String("unit.id", unitID))
	defer func() { end(err) }()

	trimPtr(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.managedCourse(ctx, scope, courseID); err != nil {
		return nil, err
	}
	unit, err = s.Repo.FindUnit(ctx, courseID, unitID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		unit.Title = *in.Title
	}
	if in.Description != nil {
		unit.Description = strings.TrimSpace(*in.Description)
	}
	if in.Order != nil {
		unit.Order = *in.Order
	}
	if in.EstimatedTime != nil {
		unit.EstimatedTime = *in.EstimatedTime
	}
	if err := s.Repo.UpdateUnit(ctx, unit); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, courseID)
	return unit, nil
}

func (s *CourseService) DeleteUnit(ctx context.Context, scope ScopeContext, courseID, unitID string) (err error) {
	ctx, end := tracing.Start(ctx, "CourseService.DeleteUnit", attribute.String("unit.id", unitID))
	defer func() { end(err) }()

	if _, err := s.managedCourse(ctx, scope, courseID); err != nil {
		return err
	}
	if err := s.Repo.DeleteUnit(ctx, courseID, unitID); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, courseID)
	logger.Log.Info("unit deleted", zap.String("courseId", courseID), zap.String("unitId", unitID))
	return nil
}

// managedUnit 按ID查找单元并检查调用者能否管理其课程。
// 页面路由直接指定单元，课程由单元推出
func (s *CourseService) managedUnit(ctx context.Context, scope ScopeContext, unitID string) (*model.Unit, error) {
	unit, err := s.Repo.FindUnitByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if _, err := s.managedCourse(ctx, scope, unit.CourseID); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *CourseService) CreatePage(ctx context.Context, scope ScopeContext, unitID string, in PageInput) (page *model.Page, err error) {
	ctx, end := tracing.Start(ctx, "CourseService.CreatePage", attribute.String("unit.id", unitID))
	defer func() { end(err) }()

	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(in.HTML) == "" {
		return nil, util.NewValidationError("html is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	unit, err := s.managedUnit(ctx, scope, unitID)
	if err != nil {
		return nil, err
	}

	order := 0
	if in.Order != nil {
		order = *in.Order
	} else if order, err = s.Repo.NextPageOrder(ctx, unitID); err != nil {
		return nil, err
	}

	attachments := in.Attachments
	if attachments == nil {
		attachments = []model.Attachment{}
	}
	page = &model.Page{
		UnitID:      unitID,
		Title:       in.Title,
		Order:       order,
		HTML:        in.HTML,
		AudioURL:    strings.TrimSpace(in.AudioURL),
		VideoURL:    strings.TrimSpace(in.VideoURL),
		Attachments: datatypes.JSONSlice[model.Attachment](attachments),
	}
	if err := s.Repo.CreatePage(ctx, page); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, unit.CourseID)
	return page, nil
}

func (s *CourseService) ListPages(ctx context.Context, scope ScopeContext, unitID string) ([]model.Page, error) {
	if _, err := s.managedUnit(ctx, scope, unitID); err != nil {
		return nil, err
	}
	return s.Repo.ListPages(ctx, unitID)
}

func (s *CourseService) GetPage(ctx context.Context, scope ScopeContext, unitID, pageID string) (*model.Page, error) {
	if _, err := s.managedUnit(ctx, scope, unitID); err != nil {
		return nil, err
	}
	return s.Repo.FindPage(ctx, unitID, pageID)
}

func (s *CourseService) UpdatePage(ctx context.Context, scope ScopeContext, unitID, pageID string, in UpdatePageInput) (page *model.Page, err error) {
	ctx, end := tracing.Start(ctx, "CourseService.UpdatePage", attribute.String("page.id", pageID))
	defer func() { end(err) }()

	trimPtr(in.Title)
	if in.HTML != nil && strings.TrimSpace(*in.HTML) == "" {
		return nil, util.NewValidationError("html cannot be empty")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	unit, err := s.managedUnit(ctx, scope, unitID)
	if err != nil {
		return nil, err
	}
	page, err = s.Repo.FindPage(ctx, unitID, pageID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		page.Title = *in.Title
	}
	if in.Order != nil {
		page.Order = *in.Order
	}
	if in.HTML != nil {
		page.HTML = *in.HTML
	}
	if in.AudioURL != nil {
		page.AudioURL = strings.TrimSpace(*in.AudioURL)
	}
	if in.VideoURL != nil {
		page.VideoURL = strings.TrimSpace(*in.VideoURL)
	}
	if in.Attachments != nil {
		page.Attachments = datatypes.JSONSlice[model.Attachment](*in.Attachments)
	}
	if err := s.Repo.UpdatePage(ctx, page); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, unit.CourseID)
	return page, nil
}

func (s *CourseService) DeletePage(ctx context.Context, scope ScopeContext, unitID, pageID string) error {
	unit, err := s.managedUnit(ctx, scope, unitID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeletePage(ctx, unitID, pageID); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, unit.CourseID)
	return nil
}
