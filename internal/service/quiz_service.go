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

type QuizService struct {
	Repo    *repository.QuizRepository
	Courses *repository.CourseRepository
}

func NewQuizService(repo *repository.QuizRepository, courses *repository.CourseRepository) *QuizService {
	return &QuizService{Repo: repo, Courses: courses}
}

type QuizInput struct {
	CourseID     string               `json:"courseId" validate:"required"`
	Trigger      model.TriggerType    `json:"trigger" validate:"required,oneof=unit page"`
	ModuleID     string               `json:"moduleId" validate:"required"`
	PageOrder    *int                 `json:"pageOrder"`
	Title        string               `json:"title" validate:"required,max=255"`
	Description  string               `json:"description"`
	Difficulty   model.QuizDifficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Category     string               `json:"category" validate:"max=100"`
	TimeLimit    int                  `json:"timeLimit" validate:"min=0"`
	PassingScore *int                 `json:"passingScore" validate:"omitempty,min=0,max=100"`
	TotalMarks   int                  `json:"totalMarks" validate:"min=0"`
	Questions    []model.Question     `json:"questions" validate:"required,min=1"`
}

type UpdateQuizInput struct {
	Trigger      *model.TriggerType    `json:"trigger" validate:"omitempty,oneof=unit page"`
	ModuleID     *string               `json:"moduleId"`
	PageOrder    *int                  `json:"pageOrder"`
	Title        *string               `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string               `json:"description"`
	Difficulty   *model.QuizDifficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Category     *string               `json:"category" validate:"omitempty,max=100"`
	TimeLimit    *int                  `json:"timeLimit" validate:"omitempty,min=0"`
	PassingScore *int                  `json:"passingScore" validate:"omitempty,min=0,max=100"`
	TotalMarks   *int                  `json:"totalMarks" validate:"omitempty,min=1"`
	Questions    []model.Question      `json:"questions" validate:"omitempty,min=1"`
	IsActive     *bool                 `json:"isActive"`
}

type CourseQuizzes struct {
	UnitQuizzes map[string]*model.Quiz `json:"unitQuizzes"`
	PageQuizzes map[string]*model.Quiz `json:"pageQuizzes"`
}

type QuizSubmissionResult struct {
	Attempt    *model.QuizAttempt `json:"attempt"`
	Percentage float64            `json:"percentage"`
	Feedback   []QuestionFeedback `json:"feedback"`
}

func (s *QuizService) ensureFreeTrigger(ctx context.Context, q *model.Quiz) error {
	existing, err := s.Repo.FindByTrigger(ctx, q.CourseID, q.TriggerKey)
	if errors.Is(err, util.ErrQuizNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == q.ID {
		return nil
	}
	return util.NewConflictError("a quiz already exists for this %s", q.Trigger)
}

func (s *QuizService) Create(ctx context.Context, scope ScopeContext, in QuizInput) (q *model.Quiz, err error) {
	ctx, end := tracing.Start(ctx, "QuizService.Create", attribute.String("course.id", in.CourseID))
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
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyEasy
	}

	q = &model.Quiz{
		CourseID:     in.CourseID,
		Trigger:      in.Trigger,
		ModuleID:     in.ModuleID,
		PageOrder:    pageOrder,
		TriggerKey:   model.TriggerKey(in.Trigger, in.ModuleID, pageOrder),
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		Difficulty:   difficulty,
		Category:     strings.TrimSpace(in.Category),
		TimeLimit:    in.TimeLimit,
		PassingScore: passing,
		TotalMarks:   totalMarks,
		Questions:    in.Questions,
	}
	if err := s.ensureFreeTrigger(ctx, q); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, q); err != nil {
		return nil, err
	}
	logger.Log.Info("quiz created", zap.String("quizId", q.ID), zap.String("courseId", q.CourseID), zap.String("triggerKey", q.TriggerKey))
	return q, nil
}

func (s *QuizService) Get(ctx context.Context, scope ScopeContext, id string) (*model.Quiz, error) {
	q, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.Courses.FindByID(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	if !CanManageCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}
	return q, nil
}

func (s *QuizService) GetForStudent(ctx context.Context, scope ScopeContext, id string) (*model.Quiz, error) {
	q, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsActive {
		return nil, util.ErrQuizNotFound
	}
	course, err := s.Courses.FindByID(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	if !CanAccessCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}
	q.Questions = model.RedactQuestions(q.Questions)
	return q, nil
}

func (s *QuizService) List(ctx context.Context, scope ScopeContext, f repository.QuizFilter) ([]model.Quiz, error) {
	list, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool)
	out := make([]model.Quiz, 0, len(list))
	for _, q := range list {
		ok, seen := allowed[q.CourseID]
		if !seen {
			course, err := s.Courses.FindByID(ctx, q.CourseID)
			if err != nil && !errors.Is(err, util.ErrCourseNotFound) {
				return nil, err
			}
			ok = err == nil && CanManageCourse(scope, course)
			allowed[q.CourseID] = ok
		}
		if ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *QuizService) Update(ctx context.Context, scope ScopeContext, id string, in UpdateQuizInput) (q *model.Quiz, err error) {
	ctx, end := tracing.Start(ctx, "QuizService.Update", attribute.String("quiz.id", id))
	defer func() { end(err) }()

	trimPtr(in.Title)
	trimPtr(in.Category)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	q, err = s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if in.Trigger != nil {
		q.Trigger = *in.Trigger
	}
	if in.ModuleID != nil {
		q.ModuleID = strings.TrimSpace(*in.ModuleID)
	}
	if in.PageOrder != nil || q.Trigger == model.TriggerUnit {
		q.PageOrder = in.PageOrder
	}
	pageOrder, err := checkTrigger(q.Trigger, q.ModuleID, q.PageOrder)
	if err != nil {
		return nil, err
	}
	q.PageOrder = pageOrder
	if in.ModuleID != nil {
		if _, err := s.Courses.FindUnit(ctx, q.CourseID, q.ModuleID); err != nil {
			return nil, err
		}
	}
	q.TriggerKey = model.TriggerKey(q.Trigger, q.ModuleID, q.PageOrder)

	if in.Title != nil {
		q.Title = *in.Title
	}
	if in.Description != nil {
		q.Description = strings.TrimSpace(*in.Description)
	}
	if in.Difficulty != nil {
		q.Difficulty = *in.Difficulty
	}
	if in.Category != nil {
		q.Category = *in.Category
	}
	if in.TimeLimit != nil {
		q.TimeLimit = *in.TimeLimit
	}
	if in.PassingScore != nil {
		q.PassingScore = *in.PassingScore
	}
	if in.Questions != nil {
		questionMarks, err := normalizeQuestions(in.Questions)
		if err != nil {
			return nil, err
		}
		q.Questions = in.Questions
		if in.TotalMarks == nil {
			q.TotalMarks = questionMarks
		}
	}
	if in.TotalMarks != nil {
		q.TotalMarks = *in.TotalMarks
	}
	if in.IsActive != nil && *in.IsActive != q.IsActive {
		q.IsActive = *in.IsActive
		if q.IsActive {
			now := time.Now()
			q.PublishedAt = &now
		} else {
			q.PublishedAt = nil
		}
	}

	if err := s.ensureFreeTrigger(ctx, q); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) Delete(ctx context.Context, scope ScopeContext, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

// CourseQuizzes 按触发点索引测验，以最近更新的为准
func (s *QuizService) CourseQuizzes(ctx context.Context, scope ScopeContext, courseID string, activeOnly bool) (*CourseQuizzes, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !CanAccessCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}

	f := repository.QuizFilter{CourseID: courseID}
	if activeOnly {
		active := true
		f.Active = &active
	}
	list, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &CourseQuizzes{
		UnitQuizzes: make(map[string]*model.Quiz),
		PageQuizzes: make(map[string]*model.Quiz),
	}
	for i := range list {
		q := &list[i]
		if activeOnly {
			q.Questions = model.RedactQuestions(q.Questions)
		}
		key := model.TriggerKey(q.Trigger, q.ModuleID, q.PageOrder)
		if q.Trigger == model.TriggerPage {
			out.PageQuizzes[key] = q
		} else {
			out.UnitQuizzes[key] = q
		}
	}
	return out, nil
}

// Submit 为练习作答评分，记录但不计入成绩
func (s *QuizService) Submit(ctx context.Context, scope ScopeContext, id string, answers []Answer) (res *QuizSubmissionResult, err error) {
	ctx, end := tracing.Start(ctx, "QuizService.Submit", attribute.String("quiz.id", id))
	defer func() { end(err) }()

	q, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsActive {
		return nil, util.ErrQuizNotFound
	}
	course, err := s.Courses.FindByID(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	if !CanAccessCourse(scope, course) {
		return nil, util.ErrCourseAccessDenied
	}

	raw, feedback, err := gradeAnswers(q.Questions, answers)
	if err != nil {
		return nil, err
	}
	questionMarks := 0
	for _, qq := range q.Questions {
		questionMarks += qq.Marks
	}
	score := scaleScore(raw, questionMarks, q.TotalMarks)
	pct := percentOf(score, q.TotalMarks)

	attempt := &model.QuizAttempt{
		UserID:      scope.UserID,
		QuizID:      q.ID,
		CourseID:    q.CourseID,
		Score:       score,
		TotalMarks:  q.TotalMarks,
		Passed:      pct >= float64(q.PassingScore),
		AttemptedAt: time.Now(),
	}
	if err := s.Repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	monitoring.SubmissionsTotal.WithLabelValues("quiz").Inc()

	return &QuizSubmissionResult{Attempt: attempt, Percentage: pct, Feedback: feedback}, nil
}

// Attempts 列出调用者的历史作答，最新的在前
func (s *QuizService) Attempts(ctx context.Context, scope ScopeContext, id string) ([]model.QuizAttempt, error) {
	if _, err := s.GetForStudent(ctx, scope, id); err != nil {
		return nil, err
	}
	return s.Repo.AttemptsForUser(ctx, scope.UserID, id)
}
