package controller

import (
	"elearn_backend/internal/middleware"
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentScope 请求没有权限范围时返回 401 和 false
func currentScope(ctx *gin.Context) (service.ScopeContext, bool) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return service.ScopeContext{}, false
	}
	return scope, true
}

// bindJSON 请求体无法解析时返回 400
func bindJSON(ctx *gin.Context, dst interface{}) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		util.BadRequest(ctx, "invalid request body: "+err.Error())
		return false
	}
	return true
}

type SubmitRequest struct {
	Answers []service.Answer `json:"answers" binding:"required"`
}
