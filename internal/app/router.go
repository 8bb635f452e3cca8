package app

import (
	"elearn_backend/docs"
	"elearn_backend/internal/config"
	"elearn_backend/internal/middleware"
	"elearn_backend/internal/model"
	"elearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公开路由
	a.registerPublicRoutes(router, c)

	// 2. 其余路由需要令牌和有效的权限范围
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ScopeMiddleware(s.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerStaffRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/profile", c.auth.GetProfile)
	r.POST("/onboarding/steps", c.onboarding.Steps)

	courses := r.Group("/courses")
	{
		courses.GET("", c.course.ListCourses)
		courses.GET("/:id", c.course.GetCourse)
		courses.POST("/:id/enroll", c.course.Enroll)
		courses.POST("/:id/module/:unitId/complete", c.course.CompleteUnit)
		courses.GET("/:id/progress", c.course.GetProgress)
		courses.GET("/:id/assessments", c.course.CourseAssessments)
		courses.GET("/:id/quizzes", c.course.CourseQuizzes)
	}

	assessments := r.Group("/assessments")
	{
		assessments.GET("/results", c.assessment.Results)
		assessments.GET("/:id", c.assessment.GetForStudent)
		assessments.POST("/:id/submit", c.assessment.Submit)
	}

	quizzes := r.Group("/quizzes")
	{
		quizzes.GET("/:id", c.quiz.GetForStudent)
		quizzes.POST("/:id/submit", c.quiz.Submit)
		quizzes.GET("/:id/attempts", c.quiz.Attempts)
	}
}

// registerStaffRoutes 内容管理路由，所有管理角色都可调用，
// 由服务层限制到调用者可管理的课程
func (a *App) registerStaffRoutes(r *gin.RouterGroup, c *controllers) {
	courseAdmin := r.Group("/courses/admin", middleware.StaffOnly())
	{
		courseAdmin.POST("/courses", c.course.CreateCourse)
		courseAdmin.GET("/courses", c.course.AdminListCourses)
		courseAdmin.GET("/courses/:id", c.course.AdminGetCourse)
		courseAdmin.PUT("/courses/:id", c.course.UpdateCourse)
		courseAdmin.DELETE("/courses/:id", c.course.DeleteCourse)

		courseAdmin.POST("/courses/:id/units", c.course.CreateUnit)
		courseAdmin.GET("/courses/:id/units", c.course.ListUnits)
		courseAdmin.GET("/courses/:id/units/:unitId", c.course.GetUnit)
		courseAdmin.PUT("/courses/:id/units/:unitId", c.course.UpdateUnit)
		courseAdmin.DELETE("/courses/:id/units/:unitId", c.course.DeleteUnit)

		courseAdmin.POST("/modules/:unitId/pages", c.course.CreatePage)
		courseAdmin.GET("/modules/:unitId/pages", c.course.ListPages)
		courseAdmin.GET("/modules/:unitId/pages/:pageId", c.course.GetPage)
		courseAdmin.PUT("/modules/:unitId/pages/:pageId", c.course.UpdatePage)
		courseAdmin.DELETE("/modules/:unitId/pages/:pageId", c.course.DeletePage)
	}

	assessmentAdmin := r.Group("/assessments/admin", middleware.StaffOnly())
	{
		assessmentAdmin.POST("/assessments", c.assessment.Create)
		assessmentAdmin.GET("/assessments", c.assessment.List)
		assessmentAdmin.GET("/assessments/:id", c.assessment.Get)
		assessmentAdmin.PUT("/assessments/:id", c.assessment.Update)
		assessmentAdmin.DELETE("/assessments/:id", c.assessment.Delete)
		assessmentAdmin.POST("/assessments/:id/publish", c.assessment.Publish)
		assessmentAdmin.POST("/assessments/:id/unpublish", c.assessment.Unpublish)
		assessmentAdmin.GET("/courses/:courseId", c.assessment.CourseAssessments)
		assessmentAdmin.GET("/courses/:courseId/export", c.assessment.Export)
	}

	quizAdmin := r.Group("/quizzes/admin", middleware.StaffOnly())
	{
		quizAdmin.POST("/quizzes", c.quiz.Create)
		quizAdmin.GET("/quizzes", c.quiz.List)
		quizAdmin.GET("/quizzes/:id", c.quiz.Get)
		quizAdmin.PUT("/quizzes/:id", c.quiz.Update)
		quizAdmin.DELETE("/quizzes/:id", c.quiz.Delete)
	}

	mediaAdmin := r.Group("/media/admin", middleware.StaffOnly())
	{
		mediaAdmin.POST("/upload", c.media.Upload)
	}
}

func (a *App) registerAdminRoutes(r *gin.RouterGroup, c *controllers) {
	users := r.Group("/admin/users", middleware.RoleMiddleware(model.RoleAdmin))
	{
		users.GET("", c.user.GetUsers)
		users.GET("/:id", c.user.GetUser)
		users.PUT("/:id/scope", c.user.UpdateScope)
		users.PUT("/:id/disable", c.user.SetDisabled)
	}
}
