package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service   *service.AssessmentService
	ResultSvc *service.ResultService
}

func NewAssessmentController(svc *service.AssessmentService, results *service.ResultService) *AssessmentController {
	return &AssessmentController{Service: svc, ResultSvc: results}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// @Summary Create an assessment
// @Description One CA and one exam per trigger; a second of the same type is a conflict
// @Tags Assessment admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssessmentInput true "Assessment"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 409 {object} util.Response
// @Router /api/assessments/admin/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.AssessmentInput
	if !bindJSON(ctx, &req) {
		return
	}
	a, err := c.Service.Create(ctx.Request.Context(), scope, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary List assessments
// @Tags Assessment admin
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Course ID"
// @Param type query string false "ca or exam"
// @Param active query bool false "Published state"
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /api/assessments/admin/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	f := repository.AssessmentFilter{
		CourseID: ctx.Query("courseId"),
		Type:     model.AssessmentType(ctx.Query("type")),
	}
	if v := ctx.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			util.BadRequest(ctx, "active must be true or false")
			return
		}
		f.Active = &active
	}
	list, err := c.Service.List(ctx.Request.Context(), scope, f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary Get an assessment with its answer key
// @Tags Assessment admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/admin/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	a, err := c.Service.Get(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary Update an assessment
// @Tags Assessment admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param body body service.UpdateAssessmentInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/admin/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.UpdateAssessmentInput
	if !bindJSON(ctx, &req) {
		return
	}
	a, err := c.Service.Update(ctx.Request.Context(), scope, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary Delete an assessment
// @Tags Assessment admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/admin/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	if err := c.Service.Delete(ctx.Request.Context(), scope, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "assessment deleted")
}

// @Summary Publish an assessment
// @Tags Assessment admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 409 {object} util.Response
// @Router /api/assessments/admin/assessments/{id}/publish [post]
func (c *AssessmentController) Publish(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	a, err := c.Service.Publish(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary Move an assessment back to draft
// @Tags Assessment admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 409 {object} util.Response
// @Router /api/assessments/admin/assessments/{id}/unpublish [post]
func (c *AssessmentController) Unpublish(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	a, err := c.Service.Unpublish(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary All assessments of a course keyed by trigger, drafts included
// @Tags Assessment admin
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseAssessments}
// @Router /api/assessments/admin/courses/{courseId} [get]
func (c *AssessmentController) CourseAssessments(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	res, err := c.Service.CourseAssessments(ctx.Request.Context(), scope, ctx.Param("courseId"), false)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary Export course results as xlsx
// @Tags Assessment admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {file} file
// @Router /api/assessments/admin/courses/{courseId}/export [get]
func (c *AssessmentController) Export(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	data, filename, err := c.ResultSvc.ExportCourseResults(ctx.Request.Context(), scope, ctx.Param("courseId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, xlsxContentType, data)
}

// @Summary Get a published assessment
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) GetForStudent(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	a, err := c.Service.GetForStudent(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary Submit answers
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param body body SubmitRequest true "Answers in question order"
// @Success 200 {object} util.Response{data=service.SubmissionResult}
// @Router /api/assessments/{id}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req SubmitRequest
	if !bindJSON(ctx, &req) {
		return
	}
	res, err := c.Service.Submit(ctx.Request.Context(), scope, ctx.Param("id"), req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary My results per course
// @Description Latest CA and exam per course with the combined grade; grade is absent without results
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.CourseResult}
// @Router /api/assessments/results [get]
func (c *AssessmentController) Results(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	res, err := c.ResultSvc.Results(ctx.Request.Context(), scope.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
