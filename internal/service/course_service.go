package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/tracing"
	"strings"

	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type CourseService struct {
	Repo  *repository.CourseRepository
	Cache *repository.CourseCache
}

func NewCourseService(repo *repository.CourseRepository, cache *repository.CourseCache) *CourseService {
	return &CourseService{Repo: repo, Cache: cache}
}

const MinCourseDescriptionLength = 10

type StructureInput struct {
	UnitType  model.UnitType `json:"unitType" validate:"required,oneof=chapter module section topic"`
	UnitLabel string         `json:"unitLabel" validate:"max=50"`
	UnitCount int            `json:"unitCount" validate:"min=1,max=100"`
}

type AudienceInput struct {
	Universities []string `json:"universities"`
	Faculties    []string `json:"faculties"`
	Levels       []string `json:"levels"`
	Departments  []string `json:"departments"`
}

type CourseInput struct {
	Title       string         `json:"title" validate:"required,max=255"`
	Description string         `json:"description" validate:"required,min=10"`
	CourseCode  string         `json:"courseCode" validate:"required,max=50"`
	Tags        []string       `json:"tags"`
	Category    string         `json:"category" validate:"max=100"`
	Structure   StructureInput `json:"structure"`
	// 仅超级管理员可指定，范围管理员始终使用自己的分配范围
	Audience *AudienceInput `json:"audience,omitempty"`
}

type UpdateCourseInput struct {
	Title       *string         `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string         `json:"description" validate:"omitempty,min=10"`
	CourseCode  *string         `json:"courseCode" validate:"omitempty,min=1,max=50"`
	Tags        []string        `json:"tags"`
	Category    *string         `json:"category" validate:"omitempty,max=100"`
	Structure   *StructureInput `json:"structure"`
	Audience    *AudienceInput  `json:"audience,omitempty"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func defaultUnitLabel(t model.UnitType) string {
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (a *AudienceInput) toModel() model.Audience {
	return model.Audience{
		Universities: util.NormalizeSet(a.Universities),
		Faculties:    util.NormalizeSet(a.Faculties),
		Levels:       util.NormalizeSet(a.Levels),
		Departments:  util.NormalizeSet(a.Departments),
	}
}

func courseTags(scope ScopeContext, tags []string) datatypes.JSONSlice[string] {
	out := util.NormalizeSet(tags)
	if tag, ok := CategoryTag(scope.Role); ok && !hasTag(out, tag) {
		out = append(out, tag)
	}
	return out
}

// normalizeTree 替换 nil 切片，接口返回 [] 而不是 null
func normalizeTree(course *model.Course) {
	if course.Tags == nil {
		course.Tags = []string{}
	}
	a := &course.Audience
	if a.Universities == nil {
		a.Universities = []string{}
	}
	if a.Faculties == nil {
		a.Faculties = []string{}
	}
	if a.Levels == nil {
		a.Levels = []string{}
	}
	if a.Departments == nil {
		a.Departments = []string{}
	}
	if course.Units == nil {
		course.Units = []model.Unit{}
	}
	for i := range course.Units {
		if course.Units[i].Pages == nil {
			course.Units[i].Pages = []model.Page{}
		}
		for j := range course.Units[i].Pages {
			if course.Units[i].Pages[j].Attachments == nil {
				course.Units[i].Pages[j].Attachments = []model.Attachment{}
			}
		}
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, scope ScopeContext, in CourseInput) (course *model.Course, err error) {
	ctx, end := tracing.Start(ctx, "CourseService.CreateCourse")
	defer func() { end(err) }()

	if !scope.Role.IsStaff() {
		return nil, util.NewAuthorizationError("only administrators can create courses")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CourseCode = strings.TrimSpace(in.CourseCode)
	in.Structure.UnitLabel = strings.TrimSpace(in.Structure.UnitLabel)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	audience := AudienceFor(scope)
	if scope.Role == model.RoleAdmin && in.Audience != nil {
		audience = in.Audience.toModel()
	}

	label := in.Structure.UnitLabel
	if label == "" {
		label = defaultUnitLabel(in.Structure.UnitType)
	}

	id := model.GenerateUUID()
	course = &model.Course{
		UUIDBase:    model.UUIDBase{ID: id},
		Title:       in.Title,
		Slug:        slug.Make(in.Title) + "-" + id[:8],
		Description: in.Description,
		CourseCode:  in.CourseCode,
		Tags:        courseTags(scope, in.Tags),
		Category:    strings.TrimSpace(in.Category),
		Audience:    audience,
		Structure: model.Structure{
			UnitType:  in.Structure.UnitType,
			UnitLabel: label,
			UnitCount: in.Structure.UnitCount,
		},
		CreatedBy: scope.UserID,
	}

	if err := s.Repo.Create(ctx, course); err != nil {
		return nil, err
	}
	normalizeTree(course)

	logger.Log.Info("course created",
		zap.String("courseId", course.ID),
		zap.Uint("userId", scope.UserID),
		zap.String("role", string(scope.Role)),
	)
	return course, nil
}

// GetCourse 调用者有权访问时返回完整课程树
func (s *CourseService) GetCourse(ctx context.Context, scope ScopeContext, id string) (*model.Course, error) {
	course, err := s.GetCourseWithUnits(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccessCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}
	return course, nil
}

// GetCourseWithUnits 返回课程及按顺序排列的单元和页面
func (s *CourseService) GetCourseWithUnits(ctx context.Context, id string) (course *model.Course, err error) {
	ctx, end := tracing.Start(ctx, "CourseService.GetCourseWithUnits", attribute.String("course.id", id))
	defer func() { end(err) }()

	if cached, ok := s.Cache.Get(ctx, id); ok {
		return cached, nil
	}

	course, err = s.Repo.FindTree(ctx, id)
	if err != nil {
		return nil, err
	}
	normalizeTree(course)
	s.Cache.Set(ctx, course)
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context, scope ScopeContext, f repository.CourseFilter) ([]model.Course, error) {
	courses, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Course, 0, len(courses))
	for i := range courses {
		if CanAccessCourse(scope, &courses[i]) {
			normalizeTree(&courses[i])
			visible = append(visible, courses[i])
		}
	}
	return visible, nil
}

// managedCourse 加载课程并检查调用者的写权限
func (s *CourseService) managedCourse(ctx context.Context, scope ScopeContext, courseID string) (*model.Course, error) {
	course, err := s.Repo.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !CanManageCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, scope ScopeContext, id string, in UpdateCourseInput) (course *model.Course, err error) {
	ctx, end := tracing.Start(ctx, "CourseService.UpdateCourse", attribute.String("course.id", id))
	defer func() { end(err) }()

	trimPtr(in.Title)
	trimPtr(in.Description)
	trimPtr(in.CourseCode)
	trimPtr(in.Category)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Structure != nil {
		in.Structure.UnitLabel = strings.TrimSpace(in.Structure.UnitLabel)
		if err := validateInput(in.Structure); err != nil {
			return nil, err
		}
	}

	course, err = s.managedCourse(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		course.Title = *in.Title
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	if in.CourseCode != nil {
		course.CourseCode = *in.CourseCode
	}
	if in.Category != nil {
		course.Category = *in.Category
	}
	if in.Tags != nil {
		course.Tags = courseTags(scope, in.Tags)
	}
	if in.Audience != nil && scope.Role == model.RoleAdmin {
		course.Audience = in.Audience.toModel()
	}
	if in.Structure != nil {
		count, err := s.Repo.CountUnits(ctx, id)
		if err != nil {
			return nil, err
		}
		if int64(in.Structure.UnitCount) < count {
			return nil, util.NewValidationError("unitCount cannot be lower than the %d units the course already has", count)
		}
		label := in.Structure.UnitLabel
		if label == "" {
			label = defaultUnitLabel(in.Structure.UnitType)
		}
		course.Structure = model.Structure{
			UnitType:  in.Structure.UnitType,
			UnitLabel: label,
			UnitCount: in.Structure.UnitCount,
		}
	}

	if err := s.Repo.Update(ctx, course); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, id)
	normalizeTree(course)
	return course, nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, scope ScopeContext, id string) (err error) {
	ctx, end := tracing.Start(ctx, "CourseService.DeleteCourse", attribute.String("course.id", id))
	defer func() { end(err) }()

	if _, err := s.managedCourse(ctx, scope, id); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, id)
	logger.Log.Info("course deleted", zap.String("courseId", id), zap.Uint("userId", scope.UserID))
	return nil
}

func (s *CourseService) Enroll(ctx context.Context, scope ScopeContext, courseID string) (bool, error) {
	course, err := s.Repo.FindByID(ctx, courseID)
	if err != nil {
		return false, err
	}
	if !CanAccessCourse(scope, course) {
		return false, util.ErrCourseAccessDenied
	}
	return s.Repo.Enroll(ctx, scope.UserID, courseID)
}
