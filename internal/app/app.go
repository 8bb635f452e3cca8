package app

import (
	"context"
	"elearn_backend/internal/config"
	"elearn_backend/internal/controller"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/pkg/configwatcher"
	"elearn_backend/pkg/database"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"
	"elearn_backend/pkg/security"
	"elearn_backend/pkg/tracing"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client

	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	courseTree *repository.CourseCache
	progress   *repository.ProgressRepository
	assessment *repository.AssessmentRepository
	quiz       *repository.QuizRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	storage    *service.StorageService
	media      *service.MediaService
	course     *service.CourseService
	progress   *service.ProgressService
	assessment *service.AssessmentService
	quiz       *service.QuizService
	result     *service.ResultService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	course     *controller.CourseController
	assessment *controller.AssessmentController
	quiz       *controller.QuizController
	media      *controller.MediaController
	onboarding *controller.OnboardingController
	health     *controller.HealthController
}

// RegisterConfigCallback 注册配置重新加载成功后执行的回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		courseTree: repository.NewCourseCache(rdb, cfg.Cache.CourseTreeTTL()),
		progress:   repository.NewProgressRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		quiz:       repository.NewQuizRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.media = service.NewMediaService(s.storage)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.course = service.NewCourseService(repos.course, repos.courseTree)
	s.progress = service.NewProgressService(repos.progress, repos.course, cfg.Progress.GemsPerUnit)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.course)
	s.quiz = service.NewQuizService(repos.quiz, repos.course)
	s.result = service.NewResultService(repos.assessment, repos.course, repos.user)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user),
		user:       controller.NewUserController(s.user),
		course:     controller.NewCourseController(s.course, s.progress, s.assessment, s.quiz),
		assessment: controller.NewAssessmentController(s.assessment, s.result),
		quiz:       controller.NewQuizController(s.quiz),
		media:      controller.NewMediaController(s.media),
		onboarding: controller.NewOnboardingController(),
		health:     controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully", zap.String("mode", cfg.Server.Mode))

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 课程缓存是可选的
		logger.Log.Warn("Redis unavailable, course cache disabled", zap.Error(err))
	}
	app.Redis = rdb

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	repos := app.initRepositories(db, rdb, cfg)
	svcs := app.initServices(repos, cfg)
	ctrls := app.initControllers(svcs)

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, svcs, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if a.ConfigDir != "" {
		go func() {
			if err := configwatcher.Watch(watchCtx, a.ConfigDir, a.reloadConfig); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
