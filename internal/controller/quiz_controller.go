package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
}

func NewQuizController(svc *service.QuizService) *QuizController {
	return &QuizController{Service: svc}
}

// @Summary Create a quiz
// @Tags Quiz admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuizInput true "Quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 409 {object} util.Response
// @Router /api/quizzes/admin/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.QuizInput
	if !bindJSON(ctx, &req) {
		return
	}
	q, err := c.Service.Create(ctx.Request.Context(), scope, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary List quizzes
// @Tags Quiz admin
// @Produce json
// @Security BearerAuth
// @Param courseId query string false "Course ID"
// @Param difficulty query string false "easy, medium or hard"
// @Param category query string false "Category"
// @Param active query bool false "Published state"
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quizzes/admin/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	f := repository.QuizFilter{
		CourseID:   ctx.Query("courseId"),
		Difficulty: model.QuizDifficulty(ctx.Query("difficulty")),
		Category:   ctx.Query("category"),
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

// @Summary Get a quiz with its answer key
// @Tags Quiz admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/quizzes/admin/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	q, err := c.Service.Get(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary Update a quiz
// @Tags Quiz admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param body body service.UpdateQuizInput true "Fields to change"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/quizzes/admin/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	var req service.UpdateQuizInput
	if !bindJSON(ctx, &req) {
		return
	}
	q, err := c.Service.Update(ctx.Request.Context(), scope, ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary Delete a quiz
// @Tags Quiz admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/admin/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	if err := c.Service.Delete(ctx.Request.Context(), scope, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "quiz deleted")
}

// @Summary Get a published quiz
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetForStudent(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	q, err := c.Service.GetForStudent(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary Submit quiz answers
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param body body SubmitRequest true "Answers in question order"
// @Success 200 {object} util.Response{data=service.QuizSubmissionResult}
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
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

// @Summary My attempts at a quiz
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) Attempts(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	attempts, err := c.Service.Attempts(ctx.Request.Context(), scope, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
