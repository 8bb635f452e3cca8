package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteUnitAwardsGemsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	student := f.scopeFor(t, model.RoleUser)
	course, units := f.seedCourse(t, admin, 2)

	first, err := f.progress.CompleteUnit(ctx, student.UserID, course.ID, units[0].ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, 3, first.GemsAwarded)
	assert.Equal(t, 3, first.TotalGems)

	again, err := f.progress.CompleteUnit(ctx, student.UserID, course.ID, units[0].ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Zero(t, again.GemsAwarded)
	assert.Equal(t, 3, again.TotalGems)

	second, err := f.progress.CompleteUnit(ctx, student.UserID, course.ID, units[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 6, second.TotalGems)
}

// The test DB holds a single connection, so these calls run one after another; the
// unique (user_id, unit_id) index is what guards truly parallel inserts.
func TestCompleteUnitRepeatedCallsAwardOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	student := f.scopeFor(t, model.RoleUser)
	course, units := f.seedCourse(t, admin, 1)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*model.UnitCompletionResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.progress.CompleteUnit(ctx, student.UserID, course.ID, units[0].ID)
		}(i)
	}
	wg.Wait()

	awarded := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		if !results[i].AlreadyCompleted {
			awarded++
		}
	}
	assert.Equal(t, 1, awarded)

	user, err := f.users.FindByID(ctx, student.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, user.Gems)
}

func TestCompleteUnitValidatesTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	student := f.scopeFor(t, model.RoleUser)
	course, _ := f.seedCourse(t, admin, 1)
	other, otherUnits := f.seedCourse(t, admin, 1)
	require.NotEqual(t, course.ID, other.ID)

	_, err := f.progress.CompleteUnit(ctx, student.UserID, "missing", otherUnits[0].ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = f.progress.CompleteUnit(ctx, student.UserID, course.ID, otherUnits[0].ID)
	assert.ErrorIs(t, err, util.ErrUnitNotFound, "unit must belong to the course")
}

func TestGetCourseProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.scopeFor(t, model.RoleAdmin)
	student := f.scopeFor(t, model.RoleUser)
	course, units := f.seedCourse(t, admin, 3)

	empty, err := f.progress.GetCourseProgress(ctx, student.UserID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.CompletedUnits)
	assert.Zero(t, empty.Percentage)

	_, err = f.progress.CompleteUnit(ctx, student.UserID, course.ID, units[1].ID)
	require.NoError(t, err)

	p, err := f.progress.GetCourseProgress(ctx, student.UserID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalUnits)
	assert.Equal(t, 1, p.CompletedUnits)
	assert.Equal(t, 33.33, p.Percentage)
	require.Len(t, p.UnitDetails, 3)
	assert.False(t, p.UnitDetails[0].Completed)
	assert.True(t, p.UnitDetails[1].Completed)
	assert.Equal(t, units[1].ID, p.UnitDetails[1].UnitID)
}
