package controller

import (
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// Register godoc
// @Summary Register a new user
// @Description New accounts always start with the user role
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterInput true "Registration"
// @Success 201 {object} util.Response{data=object} "created"
// @Failure 400 {object} util.Response "invalid input"
// @Failure 409 {object} util.Response "email already registered"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

// Login godoc
// @Summary Log in
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   body body service.LoginInput true "Credentials"
// @Success 200 {object} util.Response{data=service.LoginResult}
// @Failure 400 {object} util.Response "invalid email or password"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// GetProfile godoc
// @Summary Current user
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	scope, ok := currentScope(ctx)
	if !ok {
		return
	}
	user, err := c.UserService.GetUserByID(ctx.Request.Context(), scope.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
