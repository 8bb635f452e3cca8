package service

import (
	"elearn_backend/internal/model"
	"strings"
)

// ScopeContext 调用者身份，所有权限判断都基于它。
// 每次请求由用户记录构建一次并显式传递
type ScopeContext struct {
	UserID       uint
	Role         model.UserRole
	Universities []string
	Faculties    []string
	Departments  []string
	Levels       []string
}

func ScopeFromUser(u *model.User) ScopeContext {
	if u == nil {
		return ScopeContext{Role: model.RoleUser}
	}
	return ScopeContext{
		UserID:       u.ID,
		Role:         u.Role,
		Universities: []string(u.AssignedUniversities),
		Faculties:    []string(u.AssignedFaculties),
		Departments:  []string(u.AssignedDepartments),
		Levels:       []string(u.AssignedLevels),
	}
}

// categoryTags 分类管理员与其管理的课程标签
var categoryTags = map[model.UserRole]string{
	model.RoleWAECAdmin: "waec",
	model.RoleJAMBAdmin: "jamb",
}

func CategoryTag(role model.UserRole) (string, bool) {
	tag, ok := categoryTags[role]
	return tag, ok
}

// AudienceFor 调用者创建课程时写入的受众，
// 原样复制调用者分配的大学、院系和年级
func AudienceFor(scope ScopeContext) model.Audience {
	return model.Audience{
		Universities: copySet(scope.Universities),
		Faculties:    copySet(scope.Faculties),
		Levels:       copySet(scope.Levels),
		Departments:  []string{},
	}
}

// CanAccessCourse 判断调用者能否查看（用户）或管理（管理员）课程。
// 任何角色（包括未知角色）都会得到结果
func CanAccessCourse(scope ScopeContext, course *model.Course) bool {
	if course == nil {
		return false
	}

	switch scope.Role {
	case model.RoleAdmin, model.RoleUser:
		return true
	case model.RoleWAECAdmin, model.RoleJAMBAdmin:
		tag, _ := CategoryTag(scope.Role)
		return hasTag(course.Tags, tag)
	case model.RoleSubadmin:
		a := course.Audience
		return dimensionAllows(a.Universities, scope.Universities) &&
			dimensionAllows(a.Faculties, scope.Faculties) &&
			dimensionAllows(a.Levels, scope.Levels) &&
			dimensionAllows(a.Departments, scope.Departments)
	}
	return false
}

// CanManageCourse 仅限管理角色的 CanAccessCourse
func CanManageCourse(scope ScopeContext, course *model.Course) bool {
	return scope.Role.IsStaff() && CanAccessCourse(scope, course)
}

// dimensionAllows 课程维度为空表示不限制，否则管理员至少要有一个相同的值
func dimensionAllows(courseValues, assigned []string) bool {
	if len(courseValues) == 0 {
		return true
	}
	for _, c := range courseValues {
		for _, a := range assigned {
			if c == a {
				return true
			}
		}
	}
	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

func copySet(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
