package controller

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserController 管理员用户管理接口
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

type DisableUserRequest struct {
	Disabled bool `json:"disabled"`
}

type UserListResponse struct {
	Items    []model.User `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// GetUsers godoc
// @Summary List users
// @Tags User admin
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "Page" default(1)
// @Param   pageSize query int false "Page size" default(10)
// @Param   role query string false "Role filter"
// @Param   search query string false "Name or email"
// @Success 200 {object} util.Response{data=UserListResponse}
// @Failure 403 {object} util.Response
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	f := repository.UserFilter{
		Role:     model.UserRole(ctx.Query("role")),
		Search:   ctx.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
	users, total, err := c.UserService.GetUsers(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, UserListResponse{
		Items:    users,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetUser godoc
// @Summary Get a user
// @Tags User admin
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "User ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}
	user, err := c.UserService.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateScope godoc
// @Summary Assign a role and scope
// @Description Replaces the user's role and assignment sets
// @Tags User admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "User ID"
// @Param   body body service.ScopeInput true "Role and assignments"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/admin/users/{id}/scope [put]
func (c *UserController) UpdateScope(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}
	var req service.ScopeInput
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.UserService.UpdateScope(ctx.Request.Context(), scope, id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// SetDisabled godoc
// @Summary Disable or restore a user
// @Tags User admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "User ID"
// @Param   body body DisableUserRequest true "Disabled flag"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disable [put]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}
	var req DisableUserRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.UserService.DisableUser(ctx.Request.Context(), scope, id, req.Disabled); err != nil {
		util.HandleError(ctx, err)
		return
	}
	if req.Disabled {
		util.Message(ctx, "user disabled")
		return
	}
	util.Message(ctx, "user enabled")
}

func userIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return 0, false
	}
	return uint(id), true
}
