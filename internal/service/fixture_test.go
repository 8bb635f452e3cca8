package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/testutil"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	users       *repository.UserRepository
	courses     *CourseService
	progress    *ProgressService
	assessments *AssessmentService
	quizzes     *QuizService
	results     *ResultService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	return &fixture{
		db:          db,
		users:       userRepo,
		courses:     NewCourseService(courseRepo, repository.NewCourseCache(nil, 0)),
		progress:    NewProgressService(repository.NewProgressRepository(db), courseRepo, 3),
		assessments: NewAssessmentService(assessmentRepo, courseRepo),
		quizzes:     NewQuizService(repository.NewQuizRepository(db), courseRepo),
		results:     NewResultService(assessmentRepo, courseRepo, userRepo),
	}
}

func (f *fixture) scopeFor(t *testing.T, role model.UserRole, mutate ...func(*model.User)) ScopeContext {
	t.Helper()
	return ScopeFromUser(testutil.CreateUser(t, f.db, role, mutate...))
}

func courseInput(title string, unitCount int) CourseInput {
	return CourseInput{
		Title:       title,
		Description: "An introductory course on " + title,
		CourseCode:  "CSC101",
		Structure: StructureInput{
			UnitType:  model.UnitModule,
			UnitCount: unitCount,
		},
	}
}

// seedCourse creates a course with n units as a full admin.
func (f *fixture) seedCourse(t *testing.T, admin ScopeContext, n int) (*model.Course, []*model.Unit) {
	t.Helper()
	ctx := context.Background()

	course, err := f.courses.CreateCourse(ctx, admin, courseInput("Algorithms", 10))
	require.NoError(t, err)

	units := make([]*model.Unit, 0, n)
	for i := 0; i < n; i++ {
		u, err := f.courses.CreateUnit(ctx, admin, course.ID, UnitInput{Title: "Unit"})
		require.NoError(t, err)
		units = append(units, u)
	}
	return course, units
}

func intPtr(v int) *int { return &v }

func mcQuestion(correct, marks int) model.Question {
	return model.Question{
		Text:          "Which option is the right one?",
		QuestionType:  model.MultipleChoice,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: intPtr(correct),
		Marks:         marks,
	}
}

func assessmentInput(courseID, unitID string, t model.AssessmentType) AssessmentInput {
	return AssessmentInput{
		CourseID:  courseID,
		Type:      t,
		Trigger:   model.TriggerUnit,
		ModuleID:  unitID,
		Title:     "Unit check",
		Questions: []model.Question{mcQuestion(1, 5), mcQuestion(2, 5)},
	}
}
