package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseStampsScopedAudience(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := f.scopeFor(t, model.RoleSubadmin, func(u *model.User) {
		u.AssignedUniversities = []string{"UNILAG"}
		u.AssignedFaculties = []string{"Science"}
		u.AssignedLevels = []string{"100"}
	})

	in := courseInput("Intro to Physics", 5)
	in.Audience = &AudienceInput{Universities: []string{"OAU"}}
	course, err := f.courses.CreateCourse(ctx, sub, in)
	require.NoError(t, err)

	assert.Equal(t, []string{"UNILAG"}, []string(course.Audience.Universities), "scoped admins cannot pick an audience")
	assert.Equal(t, []string{"Science"}, []string(course.Audience.Faculties))
	assert.Equal(t, []string{"100"}, []string(course.Audience.Levels))
	assert.Equal(t, "Module", course.Structure.UnitLabel)
	assert.True(t, strings.HasPrefix(course.Slug, "intro-to-physics-"))
	assert.Equal(t, sub.UserID, course.CreatedBy)
}

func TestCreateCourseCategoryAdminTagsCourse(t *testing.T) {
	f := newFixture(t)
	waec := f.scopeFor(t, model.RoleWAECAdmin)

	course, err := f.courses.CreateCourse(context.Background(), waec, courseInput("WAEC Maths", 3))
	require.NoError(t, err)
	assert.Contains(t, []string(course.Tags), "waec")

	_, err = f.courses.GetCourse(context.Background(), waec, course.ID)
	assert.NoError(t, err, "creator can always reach the course it created")
}

func TestCreateCourseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)

	in := courseInput("Algebra", 5)
	in.Description = "too short"
	_, err := f.courses.CreateCourse(ctx, admin, in)
	assert.ErrorIs(t, err, util.ErrValidation)

	in = courseInput("Algebra", 0)
	_, err = f.courses.CreateCourse(ctx, admin, in)
	assert.ErrorIs(t, err, util.ErrValidation)

	in = courseInput("Algebra", 5)
	in.Structure.UnitType = "lesson"
	_, err = f.courses.CreateCourse(ctx, admin, in)
	assert.ErrorIs(t, err, util.ErrValidation)

	student := f.scopeFor(t, model.RoleUser)
	_, err = f.courses.CreateCourse(ctx, student, courseInput("Algebra", 5))
	assert.ErrorIs(t, err, util.ErrAuthorization)
}

func TestUnitCountIsACap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)

	course, err := f.courses.CreateCourse(ctx, admin, courseInput("Chemistry", 2))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.courses.CreateUnit(ctx, admin, course.ID, UnitInput{Title: "Unit"})
		require.NoError(t, err)
	}
	_, err = f.courses.CreateUnit(ctx, admin, course.ID, UnitInput{Title: "One too many"})
	assert.ErrorIs(t, err, util.ErrUnitLimitReached)

	count := 1
	_, err = f.courses.UpdateCourse(ctx, admin, course.ID, UpdateCourseInput{
		Structure: &StructureInput{UnitType: model.UnitChapter, UnitCount: count},
	})
	assert.ErrorIs(t, err, util.ErrValidation, "cannot shrink below existing units")
}

func TestUnitCapHoldsUnderParallelCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)

	course, err := f.courses.CreateCourse(ctx, admin, courseInput("Geography", 2))
	require.NoError(t, err)

	const callers = 6
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.courses.CreateUnit(ctx, admin, course.ID, UnitInput{Title: "Unit"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, util.ErrUnitLimitReached)
	}
	assert.Equal(t, 2, created)

	var units int64
	f.db.Model(&model.Unit{}).Where("course_id = ?", course.ID).Count(&units)
	assert.Equal(t, int64(2), units)
}

func TestCourseTreeIsSortedByOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)

	course, err := f.courses.CreateCourse(ctx, admin, courseInput("Biology", 5))
	require.NoError(t, err)

	third, err := f.courses.CreateUnit(ctx, admin, course.ID, UnitInput{Title: "Third", Order: intPtr(3)})
	require.NoError(t, err)
	first, err := f.courses.CreateUnit(ctx, admin, course.ID, UnitInput{Title: "First", Order: intPtr(1)})
	require.NoError(t, err)
	next, err := f.courses.CreateUnit(ctx, admin, course.ID, UnitInput{Title: "Appended"})
	require.NoError(t, err)
	assert.Equal(t, 4, next.Order, "order defaults to max+1")

	_, err = f.courses.CreatePage(ctx, admin, first.ID, PageInput{HTML: "<p>two</p>", Order: intPtr(2)})
	require.NoError(t, err)
	_, err = f.courses.CreatePage(ctx, admin, first.ID, PageInput{HTML: "<p>one</p>", Order: intPtr(1)})
	require.NoError(t, err)

	tree, err := f.courses.GetCourse(ctx, admin, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Units, 3)
	assert.Equal(t, first.ID, tree.Units[0].ID)
	assert.Equal(t, third.ID, tree.Units[1].ID)
	assert.Equal(t, next.ID, tree.Units[2].ID)

	require.Len(t, tree.Units[0].Pages, 2)
	assert.Equal(t, "<p>one</p>", tree.Units[0].Pages[0].HTML)
	assert.Equal(t, "<p>two</p>", tree.Units[0].Pages[1].HTML)
	assert.NotNil(t, tree.Units[1].Pages)
	assert.NotNil(t, tree.Units[0].Pages[0].Attachments)
}

func TestCreatePageRejectsBlankHTML(t *testing.T) {
	f := newFixture(t)
	admin := f.scopeFor(t, model.RoleAdmin)
	_, units := f.seedCourse(t, admin, 1)

	_, err := f.courses.CreatePage(context.Background(), admin, units[0].ID, PageInput{HTML: "   "})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = f.courses.CreatePage(context.Background(), admin, "missing", PageInput{HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, util.ErrUnitNotFound)
}

// seedPages adds n pages to every unit.
func (f *fixture) seedPages(t *testing.T, admin ScopeContext, units []*model.Unit, n int) {
	t.Helper()
	for _, u := range units {
		for i := 0; i < n; i++ {
			_, err := f.courses.CreatePage(context.Background(), admin, u.ID, PageInput{HTML: "<p>page</p>"})
			require.NoError(t, err)
		}
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	course, units := f.seedCourse(t, admin, 2)
	f.seedPages(t, admin, units, 3)

	_, err := f.assessments.Create(ctx, admin, assessmentInput(course.ID, units[0].ID, model.AssessmentCA))
	require.NoError(t, err)

	var pages int64
	f.db.Model(&model.Page{}).Count(&pages)
	require.Equal(t, int64(6), pages)

	require.NoError(t, f.courses.DeleteCourse(ctx, admin, course.ID))

	_, err = f.courses.GetCourse(ctx, admin, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	var unitsLeft, assessments int64
	f.db.Model(&model.Page{}).Count(&pages)
	f.db.Model(&model.Unit{}).Count(&unitsLeft)
	f.db.Model(&model.Assessment{}).Count(&assessments)
	assert.Zero(t, pages)
	assert.Zero(t, unitsLeft)
	assert.Zero(t, assessments)

	assert.ErrorIs(t, f.courses.DeleteCourse(ctx, admin, course.ID), util.ErrCourseNotFound)
}

func TestDeleteUnitKeepsSibling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	course, units := f.seedCourse(t, admin, 2)
	f.seedPages(t, admin, units, 3)

	_, err := f.assessments.Create(ctx, admin, assessmentInput(course.ID, units[0].ID, model.AssessmentCA))
	require.NoError(t, err)
	kept, err := f.assessments.Create(ctx, admin, assessmentInput(course.ID, units[1].ID, model.AssessmentCA))
	require.NoError(t, err)

	require.NoError(t, f.courses.DeleteUnit(ctx, admin, course.ID, units[0].ID))

	tree, err := f.courses.GetCourse(ctx, admin, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Units, 1)
	assert.Equal(t, units[1].ID, tree.Units[0].ID)
	assert.Len(t, tree.Units[0].Pages, 3)

	var pages int64
	f.db.Model(&model.Page{}).Count(&pages)
	assert.Equal(t, int64(3), pages)
	f.db.Model(&model.Page{}).Where("unit_id = ?", units[0].ID).Count(&pages)
	assert.Zero(t, pages)

	list, err := f.assessments.List(ctx, admin, repository.AssessmentFilter{CourseID: course.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
}

func TestSubadminOutsideScopeIsDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.scopeFor(t, model.RoleSubadmin, func(u *model.User) {
		u.AssignedUniversities = []string{"UNILAG"}
	})
	outsider := f.scopeFor(t, model.RoleSubadmin, func(u *model.User) {
		u.AssignedUniversities = []string{"OAU"}
	})

	course, err := f.courses.CreateCourse(ctx, owner, courseInput("Statistics", 3))
	require.NoError(t, err)

	_, err = f.courses.CreateUnit(ctx, outsider, course.ID, UnitInput{Title: "Nope"})
	assert.ErrorIs(t, err, util.ErrAuthorization)

	list, err := f.courses.ListCourses(ctx, outsider, repository.CourseFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.courses.ListCourses(ctx, owner, repository.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnrollIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	student := f.scopeFor(t, model.RoleUser)
	course, _ := f.seedCourse(t, admin, 0)

	created, err := f.courses.Enroll(ctx, student, course.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.courses.Enroll(ctx, student, course.ID)
	require.NoError(t, err)
	assert.False(t, created)
}
