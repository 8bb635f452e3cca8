package controller

import (
	"elearn_backend/internal/service"
	"elearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OnboardingController struct{}

func NewOnboardingController() *OnboardingController {
	return &OnboardingController{}
}

// @Summary Onboarding wizard steps
// @Description Returns the ordered steps for the answers given so far
// @Tags Onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.OnboardingForm true "Branching answers"
// @Success 200 {object} util.Response{data=service.OnboardingPlan}
// @Router /api/onboarding/steps [post]
func (c *OnboardingController) Steps(ctx *gin.Context) {
	var form service.OnboardingForm
	if !bindJSON(ctx, &form) {
		return
	}
	util.Success(ctx, service.PlanOnboarding(form))
}
