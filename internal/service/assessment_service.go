package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"
	"elearn_backend/pkg/tracing"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AssessmentService struct {
	Repo    *repository.AssessmentRepository
	Courses *repository.CourseRepository
}

func NewAssessmentService(repo *repository.AssessmentRepository, courses *repository.CourseRepository) *AssessmentService {
	return &AssessmentService{Repo: repo, Courses: courses}
}

type AssessmentInput struct {
	CourseID     string               `json:"courseId" validate:"required"`
	Type         model.AssessmentType `json:"type" validate:"required,oneof=ca exam"`
	Trigger      model.TriggerType    `json:"trigger" validate:"required,oneof=unit page"`
	ModuleID     string               `json:"moduleId" validate:"required"`
	PageOrder    *int                 `json:"pageOrder"`
	Title        string               `json:"title" validate:"required,max=255"`
	Description  string               `json:"description"`
	Instructions string               `json:"instructions"`
	TimeLimit    int                  `json:"timeLimit" validate:"min=0"`
	PassingScore *int                 `json:"passingScore" validate:"omitempty,min=0,max=100"`
	TotalMarks   int                  `json:"totalMarks" validate:"min=0"`
	Questions    []model.Question     `json:"questions" validate:"required,min=1"`
}

type UpdateAssessmentInput struct {
	Type         *model.AssessmentType `json:"type" validate:"omitempty,oneof=ca exam"`
	Trigger      *model.TriggerType    `json:"trigger" validate:"omitempty,oneof=unit page"`
	ModuleID     *string               `json:"moduleId"`
	PageOrder    *int                  `json:"pageOrder"`
	Title        *string               `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string               `json:"description"`
	Instructions *string               `json:"instructions"`
	TimeLimit    *int                  `json:"timeLimit" validate:"omitempty,min=0"`
	PassingScore *int                  `json:"passingScore" validate:"omitempty,min=0,max=100"`
	TotalMarks   *int                  `json:"totalMarks" validate:"omitempty,min=1"`
	Questions    []model.Question      `json:"questions" validate:"omitempty,min=1"`
}

// AssessmentPair 每个触发点最多一个平时测验（CA）和一个考试
type AssessmentPair struct {
	CA   *model.Assessment `json:"ca,omitempty"`
	Exam *model.Assessment `json:"exam,omitempty"`
}

type CourseAssessments struct {
	UnitAssessments map[string]*AssessmentPair `json:"unitAssessments"`
	PageAssessments map[string]*AssessmentPair `json:"pageAssessments"`
}

type SubmissionResult struct {
	Result     *model.Result      `json:"result"`
	Percentage float64            `json:"percentage"`
	Passed     bool               `json:"passed"`
	Feedback   []QuestionFeedback `json:"feedback"`
}

// triggerTarget 检查课程可管理且触发单元属于该课程
func triggerTarget(ctx context.Context, courses *repository.CourseRepository, scope ScopeContext, courseID, moduleID string) error {
	course, err := courses.FindByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !CanManageCourse(scope, course) {
		return util.ErrCourseAccessDenied
	}
	_, err = courses.FindUnit(ctx, courseID, moduleID)
	return err
}

func (s *AssessmentService) ensureFreeTrigger(ctx context.Context, a *model.Assessment) error {
	existing, err := s.Repo.FindByTrigger(ctx, a.CourseID, a.TriggerKey, a.Type)
	if errors.Is(err, util.ErrAssessmentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == a.ID {
		return nil
	}
	return util.NewConflictError("a %s assessment already exists for this %s", a.Type, a.Trigger)
}

func (s *AssessmentService) Create(ctx context.Context, scope ScopeContext, in AssessmentInput) (a *model.Assessment, err error) {
	ctx, end := tracing.Start(ctx, "AssessmentService.Create", attribute.String("course.id", in.CourseID))
	defer func() { end(err) }()

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	pageOrder, err := checkTrigger(in.Trigger, in.ModuleID, in.PageOrder)
	if err != nil {
		return nil, err
	}
	questionMarks, err := normalizeQuestions(in.Questions)
	if err != nil {
		return nil, err
	}
	if err := triggerTarget(ctx, s.Courses, scope, in.CourseID, in.ModuleID); err != nil {
		return nil, err
	}

	totalMarks := in.TotalMarks
	if totalMarks == 0 {
		totalMarks = questionMarks
	}
	passing := 50
	if in.PassingScore != nil {
		passing = *in.PassingScore
	}

	a = &model.Assessment{
		CourseID:     in.CourseID,
		Type:         in.Type,
		Trigger:      in.Trigger,
		ModuleID:     in.ModuleID,
		PageOrder:    pageOrder,
		TriggerKey:   model.TriggerKey(in.Trigger, in.ModuleID, pageOrder),
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Instructions: strings.TrimSpace(in.Instructions),
		TimeLimit:    in.TimeLimit,
		PassingScore: passing,
		TotalMarks:   totalMarks,
		Questions:    in.Questions,
	}
	if err := s.ensureFreeTrigger(ctx, a); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.Log.Info("assessment created",
		zap.String("assessmentId", a.ID),
		zap.String("courseId", a.CourseID),
		zap.String("triggerKey", a.TriggerKey),
		zap.String("type", string(a.Type)),
	)
	return a, nil
}

// Get 返回测评，调用者需能管理其课程
func (s *AssessmentService) Get(ctx context.Context, scope ScopeContext, id string) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.Courses.FindByID(ctx, a.CourseID)
	if err != nil {
		return nil, err
	}
	if !CanManageCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}
	return a, nil
}

// GetForStudent 返回已发布且去掉答案的测评
func (s *AssessmentService) GetForStudent(ctx context.Context, scope ScopeContext, id string) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, util.ErrAssessmentNotFound
	}
	course, err := s.Courses.FindByID(ctx, a.CourseID)
	if err != nil {
		return nil, err
	}
	if !CanAccessCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}
	a.Questions = model.RedactQuestions(a.Questions)
	return a, nil
}

// List 返回调用者可管理课程的所有测评
func (s *AssessmentService) List(ctx context.Context, scope ScopeContext, f repository.AssessmentFilter) ([]model.Assessment, error) {
	list, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool)
	out := make([]model.Assessment, 0, len(list))
	for _, a := range list {
		ok, seen := allowed[a.CourseID]
		if !seen {
			course, err := s.Courses.FindByID(ctx, a.CourseID)
			if err != nil && !errors.Is(err, util.ErrCourseNotFound) {
				return nil, err
			}
			ok = err == nil && CanManageCourse(scope, course)
			allowed[a.CourseID] = ok
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AssessmentService) Update(ctx context.Context, scope ScopeContext, id string, in UpdateAssessmentInput) (a *model.Assessment, err error) {
	ctx, end := tracing.Start(ctx, "AssessmentService.Update", attribute.String("assessment.id", id))
	defer func() { end(err) }()

	trimPtr(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	a, err = s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Trigger != nil {
		a.Trigger = *in.Trigger
	}
	if in.ModuleID != nil {
		a.ModuleID = strings.TrimSpace(*in.ModuleID)
	}
	if in.PageOrder != nil || a.Trigger == model.TriggerUnit {
		a.PageOrder = in.PageOrder
	}
	pageOrder, err := checkTrigger(a.Trigger, a.ModuleID, a.PageOrder)
	if err != nil {
		return nil, err
	}
	a.PageOrder = pageOrder
	if in.ModuleID != nil {
		if _, err := s.Courses.FindUnit(ctx, a.CourseID, a.ModuleID); err != nil {
			return nil, err
		}
	}
	a.TriggerKey = model.TriggerKey(a.Trigger, a.ModuleID, a.PageOrder)

	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	if in.Instructions != nil {
		a.Instructions = strings.TrimSpace(*in.Instructions)
	}
	if in.TimeLimit != nil {
		a.TimeLimit = *in.TimeLimit
	}
	if in.PassingScore != nil {
		a.PassingScore = *in.PassingScore
	}
	if in.Questions != nil {
		questionMarks, err := normalizeQuestions(in.Questions)
		if err != nil {
			return nil, err
		}
		a.Questions = in.Questions
		if in.TotalMarks == nil {
			a.TotalMarks = questionMarks
		}
	}
	if in.TotalMarks != nil {
		a.TotalMarks = *in.TotalMarks
	}

	if err := s.ensureFreeTrigger(ctx, a); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Delete(ctx context.Context, scope ScopeContext, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

// Publish 将草稿发布，重复发布返回冲突错误
func (s *AssessmentService) Publish(ctx context.Context, scope ScopeContext, id string) (*model.Assessment, error) {
	return s.setPublished(ctx, scope, id, true)
}

// Unpublish 将已发布的测评改回草稿
func (s *AssessmentService) Unpublish(ctx context.Context, scope ScopeContext, id string) (*model.Assessment, error) {
	return s.setPublished(ctx, scope, id, false)
}

func (s *AssessmentService) setPublished(ctx context.Context, scope ScopeContext, id string, publish bool) (*model.Assessment, error) {
	a, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if a.IsActive == publish {
		if publish {
			return nil, util.NewConflictError("assessment is already published")
		}
		return nil, util.NewConflictError("assessment is already a draft")
	}

	a.IsActive = publish
	if publish {
		now := time.Now()
		a.PublishedAt = &now
	} else {
		a.PublishedAt = nil
	}
	if err := s.Repo.Update(ctx, a); err != nil {
		return nil, err
	}
	logger.Log.Info("assessment publication changed", zap.String("assessmentId", a.ID), zap.Bool("published", publish))
	return a, nil
}

// CourseAssessments 按触发点索引课程测评。结果按更新时间升序返回，
// 历史数据中同一触发点有重复时以最近更新的为准
func (s *AssessmentService) CourseAssessments(ctx context.Context, scope ScopeContext, courseID string, activeOnly bool) (*CourseAssessments, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !CanAccessCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}

	f := repository.AssessmentFilter{CourseID: courseID}
	if activeOnly {
		active := true
		f.Active = &active
	}
	list, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &CourseAssessments{
		UnitAssessments: make(map[string]*AssessmentPair),
		PageAssessments: make(map[string]*AssessmentPair),
	}
	for i := range list {
		a := &list[i]
		if activeOnly {
			a.Questions = model.RedactQuestions(a.Questions)
		}
		index := out.UnitAssessments
		if a.Trigger == model.TriggerPage {
			index = out.PageAssessments
		}
		key := model.TriggerKey(a.Trigger, a.ModuleID, a.PageOrder)
		pair, ok := index[key]
		if !ok {
			pair = &AssessmentPair{}
			index[key] = pair
		}
		switch a.Type {
		case model.AssessmentCA:
			pair.CA = a
		case model.AssessmentExam:
			pair.Exam = a
		}
	}
	return out, nil
}

// Submit 为学生答案评分并记录为 Result
func (s *AssessmentService) Submit(ctx context.Context, scope ScopeContext, id string, answers []Answer) (res *SubmissionResult, err error) {
	ctx, end := tracing.Start(ctx, "AssessmentService.Submit", attribute.String("assessment.id", id))
	defer func() { end(err) }()

	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, util.ErrAssessmentNotFound
	}
	course, err := s.Courses.FindByID(ctx, a.CourseID)
	if err != nil {
		return nil, err
	}
	if !CanAccessCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}

	raw, feedback, err := gradeAnswers(a.Questions, answers)
	if err != nil {
		return nil, err
	}
	questionMarks := 0
	for _, q := range a.Questions {
		questionMarks += q.Marks
	}
	earned := scaleScore(raw, questionMarks, a.TotalMarks)

	result := &model.Result{
		UserID:       scope.UserID,
		CourseID:     a.CourseID,
		AssessmentID: a.ID,
		Type:         a.Type,
		EarnedMarks:  earned,
		TotalMarks:   a.TotalMarks,
		AttemptedAt:  time.Now(),
	}
	if err := s.Repo.CreateResult(ctx, result); err != nil {
		return nil, err
	}
	monitoring.SubmissionsTotal.WithLabelValues(string(a.Type)).Inc()

	pct := percentOf(earned, a.TotalMarks)
	return &SubmissionResult{
		Result:     result,
		Percentage: pct,
		Passed:     pct >= float64(a.PassingScore),
		Feedback:   feedback,
	}, nil
}
