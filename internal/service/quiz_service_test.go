package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizInput(courseID, unitID string) QuizInput {
	return QuizInput{
		CourseID:  courseID,
		Trigger:   model.TriggerUnit,
		ModuleID:  unitID,
		Title:     "Warm-up",
		Questions: []model.Question{mcQuestion(0, 2), mcQuestion(3, 2)},
	}
}

func TestCreateQuiz(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	course, units := f.seedCourse(t, admin, 1)

	q, err := f.quizzes.Create(ctx, admin, quizInput(course.ID, units[0].ID))
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyEasy, q.Difficulty)
	assert.Equal(t, 4, q.TotalMarks)
	assert.False(t, q.IsActive)

	_, err = f.quizzes.Create(ctx, admin, quizInput(course.ID, units[0].ID))
	assert.ErrorIs(t, err, util.ErrConflict, "one quiz per trigger")

	student := f.scopeFor(t, model.RoleUser)
	_, err = f.quizzes.Create(ctx, student, quizInput(course.ID, units[0].ID))
	assert.ErrorIs(t, err, util.ErrAuthorization)
}

func TestCreateQuizKeepsZeroPassingScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	course, units := f.seedCourse(t, admin, 1)

	in := quizInput(course.ID, units[0].ID)
	in.PassingScore = intPtr(0)
	q, err := f.quizzes.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, 0, q.PassingScore)

	stored, err := f.quizzes.Get(ctx, admin, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.PassingScore)
}

func TestQuizActivationAndSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	student := f.scopeFor(t, model.RoleUser)
	course, units := f.seedCourse(t, admin, 1)

	q, err := f.quizzes.Create(ctx, admin, quizInput(course.ID, units[0].ID))
	require.NoError(t, err)

	_, err = f.quizzes.GetForStudent(ctx, student, q.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
	_, err = f.quizzes.Submit(ctx, student, q.ID, nil)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = f.quizzes.Attempts(ctx, student, q.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound, "drafts expose no attempts")

	active := true
	updated, err := f.quizzes.Update(ctx, admin, q.ID, UpdateQuizInput{IsActive: &active})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.NotNil(t, updated.PublishedAt)

	view, err := f.quizzes.GetForStudent(ctx, student, q.ID)
	require.NoError(t, err)
	for _, question := range view.Questions {
		assert.Nil(t, question.CorrectAnswer)
	}

	res, err := f.quizzes.Submit(ctx, student, q.ID, []Answer{{Choice: intPtr(0)}, {Choice: intPtr(1)}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempt.Score)
	assert.InDelta(t, 50.0, res.Percentage, 0.001)
	assert.True(t, res.Attempt.Passed)

	_, err = f.quizzes.Submit(ctx, student, q.ID, []Answer{{Choice: intPtr(0)}, {Choice: intPtr(3)}})
	require.NoError(t, err)

	attempts, err := f.quizzes.Attempts(ctx, student, q.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)

	var results int64
	f.db.Model(&model.Result{}).Count(&results)
	assert.Zero(t, results, "quiz attempts are not graded results")
}

func TestCourseQuizzesIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	course, units := f.seedCourse(t, admin, 1)
	unitID := units[0].ID

	unitQuiz, err := f.quizzes.Create(ctx, admin, quizInput(course.ID, unitID))
	require.NoError(t, err)
	in := quizInput(course.ID, unitID)
	in.Trigger = model.TriggerPage
	in.PageOrder = intPtr(1)
	pageQuiz, err := f.quizzes.Create(ctx, admin, in)
	require.NoError(t, err)

	idx, err := f.quizzes.CourseQuizzes(ctx, admin, course.ID, false)
	require.NoError(t, err)
	require.Contains(t, idx.UnitQuizzes, unitID)
	assert.Equal(t, unitQuiz.ID, idx.UnitQuizzes[unitID].ID)
	require.Contains(t, idx.PageQuizzes, unitID+"-1")
	assert.Equal(t, pageQuiz.ID, idx.PageQuizzes[unitID+"-1"].ID)

	live, err := f.quizzes.CourseQuizzes(ctx, admin, course.ID, true)
	require.NoError(t, err)
	assert.Empty(t, live.UnitQuizzes)
	assert.Empty(t, live.PageQuizzes)
}

func TestDeleteCourseRemovesQuizzes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	course, units := f.seedCourse(t, admin, 1)

	_, err := f.quizzes.Create(ctx, admin, quizInput(course.ID, units[0].ID))
	require.NoError(t, err)
	require.NoError(t, f.courses.DeleteCourse(ctx, admin, course.ID))

	var quizzes int64
	f.db.Model(&model.Quiz{}).Count(&quizzes)
	assert.Zero(t, quizzes)
}

func TestQuizAttemptsRespectCourseScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	outsider := f.scopeFor(t, model.RoleSubadmin, func(u *model.User) {
		u.AssignedUniversities = []string{"OAU"}
	})
	course, units := f.seedCourse(t, admin, 1)
	_, err := f.courses.UpdateCourse(ctx, admin, course.ID, UpdateCourseInput{
		Audience: &AudienceInput{Universities: []string{"UNILAG"}},
	})
	require.NoError(t, err)

	in := quizInput(course.ID, units[0].ID)
	active := true
	q, err := f.quizzes.Create(ctx, admin, in)
	require.NoError(t, err)
	_, err = f.quizzes.Update(ctx, admin, q.ID, UpdateQuizInput{IsActive: &active})
	require.NoError(t, err)

	_, err = f.quizzes.Attempts(ctx, outsider, q.ID)
	assert.ErrorIs(t, err, util.ErrCourseAccessDenied)

	_, err = f.quizzes.Attempts(ctx, outsider, "missing")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}
