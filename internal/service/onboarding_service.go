package service

type StepID string

const (
	StepWelcome     StepID = "welcome"
	StepAvatar      StepID = "avatar"
	StepUserType    StepID = "userType"
	StepUniversity  StepID = "university"
	StepFaculty     StepID = "faculty"
	StepDepartment  StepID = "department"
	StepLevel       StepID = "level"
	StepExamTargets StepID = "examTargets"
	StepInterests   StepID = "interests"
	StepReview      StepID = "review"
)

const (
	UserTypeTertiary  = "tertiary"
	UserTypeSecondary = "secondary"
)

// OnboardingForm 决定引导步骤的那部分答案
type OnboardingForm struct {
	HasGoogleAvatar bool   `json:"hasGoogleAvatar"`
	UserType        string `json:"userType"`
}

// StepsFor 根据当前答案返回有序的引导步骤。
// 影响分支的答案变化时客户端需要重新调用
func StepsFor(form OnboardingForm) []StepID {
	steps := []StepID{StepWelcome}
	if !form.HasGoogleAvatar {
		steps = append(steps, StepAvatar)
	}
	steps = append(steps, StepUserType)

	switch form.UserType {
	case UserTypeTertiary:
		steps = append(steps, StepUniversity, StepFaculty, StepDepartment, StepLevel)
	case UserTypeSecondary:
		steps = append(steps, StepExamTargets)
	}

	return append(steps, StepInterests, StepReview)
}

type OnboardingPlan struct {
	Steps []StepID `json:"steps"`
	Total int      `json:"total"`
}

func PlanOnboarding(form OnboardingForm) OnboardingPlan {
	steps := StepsFor(form)
	return OnboardingPlan{Steps: steps, Total: len(steps)}
}
