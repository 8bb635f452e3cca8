package service

import (
	"bytes"
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{100, "A"}, {70, "A"}, {69, "B"}, {60, "B"}, {59, "C"}, {50, "C"},
		{49, "D"}, {40, "D"}, {39, "E"}, {30, "E"}, {29, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(tt.total))
		})
	}
}

func TestPickLatest(t *testing.T) {
	now := time.Now()
	results := []model.Result{
		{CourseID: "c1", Type: model.AssessmentCA, EarnedMarks: 10, AttemptedAt: now.Add(-2 * time.Hour)},
		{CourseID: "c1", Type: model.AssessmentCA, EarnedMarks: 25, AttemptedAt: now},
		{CourseID: "c1", Type: model.AssessmentCA, EarnedMarks: 30, AttemptedAt: now.Add(-time.Hour)},
		{CourseID: "c1", Type: model.AssessmentExam, EarnedMarks: 40, AttemptedAt: now},
		{CourseID: "c2", Type: model.AssessmentExam, EarnedMarks: 55, AttemptedAt: now},
	}

	latest := pickLatest(results)
	require.Len(t, latest, 2)
	assert.Equal(t, 25, latest["c1"].ca.EarnedMarks, "latest attempt wins, not the best")
	assert.Equal(t, 40, latest["c1"].exam.EarnedMarks)
	assert.Nil(t, latest["c2"].ca)

	var cr CourseResult
	latest["c1"].combine(&cr)
	require.NotNil(t, cr.TotalEarned)
	assert.Equal(t, 65, *cr.TotalEarned)
	assert.Equal(t, "B", *cr.Grade)

	var empty CourseResult
	latest["missing"].combine(&empty)
	assert.Nil(t, empty.Grade)
}

func (f *fixture) addResult(t *testing.T, userID uint, courseID string, typ model.AssessmentType, earned int, at time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&model.Result{
		UserID:      userID,
		CourseID:    courseID,
		Type:        typ,
		EarnedMarks: earned,
		TotalMarks:  100,
		AttemptedAt: at,
	}).Error)
}

func TestResultsIncludeEnrolledCoursesWithoutResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	student := f.scopeFor(t, model.RoleUser)

	graded, _ := f.seedCourse(t, admin, 0)
	enrolledOnly, _ := f.seedCourse(t, admin, 0)
	_, err := f.courses.Enroll(ctx, student, enrolledOnly.ID)
	require.NoError(t, err)

	now := time.Now()
	f.addResult(t, student.UserID, graded.ID, model.AssessmentCA, 20, now)
	f.addResult(t, student.UserID, graded.ID, model.AssessmentExam, 55, now)

	rows, err := f.results.Results(ctx, student.UserID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byCourse := make(map[string]CourseResult)
	for _, r := range rows {
		byCourse[r.CourseID] = r
	}
	require.NotNil(t, byCourse[graded.ID].Grade)
	assert.Equal(t, 75, *byCourse[graded.ID].TotalEarned)
	assert.Equal(t, "A", *byCourse[graded.ID].Grade)
	assert.Equal(t, "CSC101", byCourse[graded.ID].CourseCode)

	assert.Nil(t, byCourse[enrolledOnly.ID].Grade)
	assert.Nil(t, byCourse[enrolledOnly.ID].TotalEarned)
	assert.Nil(t, byCourse[enrolledOnly.ID].CA)
}

func TestExportCourseResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	course, _ := f.seedCourse(t, admin, 0)

	alice := f.scopeFor(t, model.RoleUser)
	bob := f.scopeFor(t, model.RoleUser)
	now := time.Now()
	f.addResult(t, alice.UserID, course.ID, model.AssessmentCA, 28, now)
	f.addResult(t, alice.UserID, course.ID, model.AssessmentExam, 45, now)
	f.addResult(t, bob.UserID, course.ID, model.AssessmentCA, 12, now)

	data, name, err := f.results.ExportCourseResults(ctx, admin, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.Slug+"-results.xlsx", name)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"User ID", "Name", "Email", "CA", "Exam", "Total", "Grade"}, rows[0])

	first, second := rows[1], rows[2]
	if alice.UserID > bob.UserID {
		first, second = second, first
	}
	assert.Equal(t, strconv.FormatUint(uint64(alice.UserID), 10), first[0])
	assert.Equal(t, "73", first[5])
	assert.Equal(t, "A", first[6])
	assert.Equal(t, "12", second[3])
	assert.Equal(t, "F", second[6])

	student := f.scopeFor(t, model.RoleUser)
	_, _, err = f.results.ExportCourseResults(ctx, student, course.ID)
	assert.ErrorIs(t, err, util.ErrAuthorization)
}
