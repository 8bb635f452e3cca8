package service

import (
	"elearn_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessCourse(t *testing.T) {
	scoped := &model.Course{Audience: model.Audience{
		Universities: []string{"UNILAG"},
		Faculties:    []string{"Science"},
	}}
	open := &model.Course{}
	waec := &model.Course{Tags: []string{"maths", "WAEC"}}

	tests := []struct {
		name   string
		scope  ScopeContext
		course *model.Course
		want   bool
	}{
		{"admin sees everything", ScopeContext{Role: model.RoleAdmin}, scoped, true},
		{"student sees everything", ScopeContext{Role: model.RoleUser}, scoped, true},
		{"subadmin with matching assignments", ScopeContext{
			Role:         model.RoleSubadmin,
			Universities: []string{"UNILAG", "OAU"},
			Faculties:    []string{"Science"},
		}, scoped, true},
		{"subadmin missing one dimension", ScopeContext{
			Role:         model.RoleSubadmin,
			Universities: []string{"UNILAG"},
			Faculties:    []string{"Arts"},
		}, scoped, false},
		{"subadmin on unrestricted course", ScopeContext{Role: model.RoleSubadmin}, open, true},
		{"waec admin on tagged course", ScopeContext{Role: model.RoleWAECAdmin}, waec, true},
		{"jamb admin on waec course", ScopeContext{Role: model.RoleJAMBAdmin}, waec, false},
		{"unknown role", ScopeContext{Role: "moderator"}, open, false},
		{"nil course", ScopeContext{Role: model.RoleAdmin}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessCourse(tt.scope, tt.course))
		})
	}
}

func TestCanManageCourseExcludesStudents(t *testing.T) {
	course := &model.Course{}
	assert.False(t, CanManageCourse(ScopeContext{Role: model.RoleUser}, course))
	assert.True(t, CanManageCourse(ScopeContext{Role: model.RoleAdmin}, course))
}

func TestAudienceForCopiesAssignments(t *testing.T) {
	scope := ScopeContext{
		Role:         model.RoleSubadmin,
		Universities: []string{"UNILAG"},
		Faculties:    []string{"Science"},
		Levels:       []string{"100"},
		Departments:  []string{"Physics"},
	}

	a := AudienceFor(scope)
	assert.Equal(t, []string{"UNILAG"}, []string(a.Universities))
	assert.Equal(t, []string{"Science"}, []string(a.Faculties))
	assert.Equal(t, []string{"100"}, []string(a.Levels))
	assert.Empty(t, a.Departments)

	scope.Universities[0] = "changed"
	assert.Equal(t, "UNILAG", a.Universities[0])
}
