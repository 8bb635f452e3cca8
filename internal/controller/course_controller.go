package controller

import (
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	Courses     *service.CourseService
	Progress    *service.ProgressService
	Assessments *service.AssessmentService
	Quizzes     *service.QuizService
}

func NewCourseController(courses *service.CourseService, progress *service.ProgressService, assessments *service.AssessmentService, quizzes *service.QuizService) *CourseController {
	return &CourseController{Courses: courses, Progress: progress, Assessments: assessments, Quizzes: quizzes}
}

func courseFilter(ctx *gin.Context) repository.CourseFilter {
	return repository.CourseFilter{
		Search:   ctx.Query("search"),
		Category: ctx.Query("category"),
		Tag:      ctx.Query("tag"),
	}
}

// @Summary Create a course
// @Description Scoped admins get their own assignments as the course audience
// @Tags Course admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseInput true "Course"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/courses/admin/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.CourseInput
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.Courses.CreateCourse(ctx.Request.Context(), scope, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary List manageable courses
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Title or course code"
// @Param category query string false "Category"
// @Param tag query string false "Tag"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses/admin/courses [get]
func (c *CourseController) AdminListCourses(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	courses, err := c.Courses.ListCourses(ctx.Request.Context(), scope, courseFilter(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary Get a course tree
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/admin/courses/{id} [get]
func (c *CourseController) AdminGetCourse(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	course, err := c.Courses.GetCourse(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if !service.CanManageCourse(scope, course) {
		util.HandleError(ctx, util.ErrCourseAccessDenied)
		return
	}
	util.Success(ctx, course)
}

// @Summary Update a course
// @Tags Course admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body service.UpdateCourseInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/courses/admin/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.UpdateCourseInput
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.Courses.UpdateCourse(ctx.Request.Context(), scope, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Delete a course
// @Description Removes units, pages, assessments and quizzes of the course
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/admin/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	if err := c.Courses.DeleteCourse(ctx.Request.Context(), scope, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "course deleted")
}

// @Summary Create a unit
// @Tags Course admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body service.UnitInput true "Unit"
// @Success 201 {object} util.Response{data=model.Unit}
// @Router /api/courses/admin/courses/{id}/units [post]
func (c *CourseController) CreateUnit(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.UnitInput
	if !bindJSON(ctx, &req) {
		return
	}
	unit, err := c.Courses.CreateUnit(ctx.Request.Context(), scope, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, unit)
}

// @Summary List units
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=[]model.Unit}
// @Router /api/courses/admin/courses/{id}/units [get]
func (c *CourseController) ListUnits(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	units, err := c.Courses.ListUnits(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, units)
}

// @Summary Get a unit with its pages
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Success 200 {object} util.Response{data=model.Unit}
// @Router /api/courses/admin/courses/{id}/units/{unitId} [get]
func (c *CourseController) GetUnit(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	unit, err := c.Courses.GetUnit(ctx.Request.Context(), scope, ctx.Param("id"), ctx.Param("unitId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, unit)
}

// @Summary Update a unit
// @Tags Course admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Param body body service.UpdateUnitInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.Unit}
// @Router /api/courses/admin/courses/{id}/units/{unitId} [put]
func (c *CourseController) UpdateUnit(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.UpdateUnitInput
	if !bindJSON(ctx, &req) {
		return
	}
	unit, err := c.Courses.UpdateUnit(ctx.Request.Context(), scope, ctx.Param("id"), ctx.Param("unitId"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, unit)
}

// @Summary Delete a unit
// @Description Removes the unit's pages and the assessments and quizzes attached to it
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Success 200 {object} util.Response
// @Router /api/courses/admin/courses/{id}/units/{unitId} [delete]
func (c *CourseController) DeleteUnit(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	if err := c.Courses.DeleteUnit(ctx.Request.Context(), scope, ctx.Param("id"), ctx.Param("unitId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "unit deleted")
}

// @Summary Create a page
// @Tags Course admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "Unit ID"
// @Param body body service.PageInput true "Page"
// @Success 201 {object} util.Response{data=model.Page}
// @Router /api/courses/admin/modules/{unitId}/pages [post]
func (c *CourseController) CreatePage(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.PageInput
	if !bindJSON(ctx, &req) {
		return
	}
	page, err := c.Courses.CreatePage(ctx.Request.Context(), scope, ctx.Param("unitId"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, page)
}

// @Summary List pages of a unit
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "Unit ID"
// @Success 200 {object} util.Response{data=[]model.Page}
// @Router /api/courses/admin/modules/{unitId}/pages [get]
func (c *CourseController) ListPages(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	pages, err := c.Courses.ListPages(ctx.Request.Context(), scope, ctx.Param("unitId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pages)
}

// @Summary Get a page
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "Unit ID"
// @Param pageId path string true "Page ID"
// @Success 200 {object} util.Response{data=model.Page}
// @Router /api/courses/admin/modules/{unitId}/pages/{pageId} [get]
func (c *CourseController) GetPage(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	page, err := c.Courses.GetPage(ctx.Request.Context(), scope, ctx.Param("unitId"), ctx.Param("pageId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary Update a page
// @Tags Course admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "Unit ID"
// @Param pageId path string true "Page ID"
// @Param body body service.UpdatePageInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.Page}
// @Router /api/courses/admin/modules/{unitId}/pages/{pageId} [put]
func (c *CourseController) UpdatePage(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.UpdatePageInput
	if !bindJSON(ctx, &req) {
		return
	}
	page, err := c.Courses.UpdatePage(ctx.Request.Context(), scope, ctx.Param("unitId"), ctx.Param("pageId"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary Delete a page
// @Tags Course admin
// @Produce json
// @Security BearerAuth
// @Param unitId path string true "Unit ID"
// @Param pageId path string true "Page ID"
// @Success 200 {object} util.Response
// @Router /api/courses/admin/modules/{unitId}/pages/{pageId} [delete]
func (c *CourseController) DeletePage(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	if err := c.Courses.DeletePage(ctx.Request.Context(), scope, ctx.Param("unitId"), ctx.Param("pageId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "page deleted")
}

// @Summary List courses
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param search query string false "Title or course code"
// @Param category query string false "Category"
// @Param tag query string false "Tag"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	courses, err := c.Courses.ListCourses(ctx.Request.Context(), scope, courseFilter(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary Get a course with units and pages
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	course, err := c.Courses.GetCourse(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Enroll in a course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	created, err := c.Courses.Enroll(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"enrolled": true, "alreadyEnrolled": !created})
}

// @Summary Mark a unit complete
// @Description Awards gems the first time only; repeat calls report alreadyCompleted
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Success 200 {object} util.Response{data=model.UnitCompletionResult}
// @Router /api/courses/{id}/module/{unitId}/complete [post]
func (c *CourseController) CompleteUnit(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	res, err := c.Progress.CompleteUnit(ctx.Request.Context(), scope.UserID, ctx.Param("id"), ctx.Param("unitId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary Course progress
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /api/courses/{id}/progress [get]
func (c *CourseController) GetProgress(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	progress, err := c.Progress.GetCourseProgress(ctx.Request.Context(), scope.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Published assessments of a course keyed by trigger
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseAssessments}
// @Router /api/courses/{id}/assessments [get]
func (c *CourseController) CourseAssessments(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	res, err := c.Assessments.CourseAssessments(ctx.Request.Context(), scope, ctx.Param("id"), true)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary Published quizzes of a course keyed by trigger
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseQuizzes}
// @Router /api/courses/{id}/quizzes [get]
func (c *CourseController) CourseQuizzes(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	res, err := c.Quizzes.CourseQuizzes(ctx.Request.Context(), scope, ctx.Param("id"), true)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
