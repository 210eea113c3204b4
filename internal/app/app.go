package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/controller"
	"quiz_prep_backend/internal/middleware"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/internal/service"
	"quiz_prep_backend/pkg/database"
	"quiz_prep_backend/pkg/logger"
	"quiz_prep_backend/pkg/monitoring"
	"quiz_prep_backend/pkg/security"
	"quiz_prep_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	topic    *repository.TopicRepository
	question *repository.QuestionRepository
	attempt  *repository.QuizAttemptRepository
	daily    *repository.DailyQuizRepository
}

type services struct {
	auth           *service.AuthService
	user           *service.UserService
	topic          *service.TopicService
	composer       *service.QuizComposer
	analytics      *service.AnalyticsService
	quiz           *service.QuizService
	scheduler      *service.SchedulerService
	recommendation *service.RecommendationService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	topic     *controller.TopicController
	quiz      *controller.QuizController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		topic:    repository.NewTopicRepository(db),
		question: repository.NewQuestionRepository(db),
		attempt:  repository.NewQuizAttemptRepository(db),
		daily:    repository.NewDailyQuizRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	composer := service.NewQuizComposer(repos.question, repos.attempt, &cfg.Quiz)
	analytics := service.NewAnalyticsService(repos.attempt, repos.daily, repos.topic, repos.user, rdb, &cfg.Quiz)
	topic := service.NewTopicService(repos.topic, repos.question)
	quiz := service.NewQuizService(repos.attempt, repos.question, repos.user, composer, analytics, &cfg.Quiz, db)
	scheduler := service.NewSchedulerService(repos.daily, repos.attempt, repos.user, topic, composer, quiz, &cfg.Quiz, db)

	return &services{
		auth:           service.NewAuthService(repos.user, cfg),
		user:           service.NewUserService(repos.user),
		topic:          topic,
		composer:       composer,
		analytics:      analytics,
		quiz:           quiz,
		scheduler:      scheduler,
		recommendation: service.NewRecommendationService(analytics, &cfg.Quiz),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.user),
		user:      controller.NewUserController(s.user),
		topic:     controller.NewTopicController(s.topic),
		quiz:      controller.NewQuizController(s.quiz, s.scheduler),
		analytics: controller.NewAnalyticsController(s.analytics, s.recommendation),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 每小时跑一轮：为到达通知时刻的用户生成每日测验，
// 并把超时的进行中测验置为放弃。
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			now := time.Now()
			s.scheduler.RunDailyGeneration(now)
			s.scheduler.SweepStaleAttempts(now)
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quiz-prep", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
