package app

import (
	"quiz_prep_backend/docs"
	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/middleware"
	"quiz_prep_backend/internal/model"

	"quiz_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 用户
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/settings", c.user.UpdateSettings)

		// 主题订阅
		authGroup.GET("/topics", c.topic.ListTopics)
		authGroup.GET("/topics/subscriptions", c.topic.ListSubscriptions)
		authGroup.POST("/topics/:id/subscribe", c.topic.Subscribe)
		authGroup.DELETE("/topics/:id/subscribe", c.topic.Unsubscribe)
		authGroup.PUT("/topics/:id/priority", c.topic.SetPriority)

		// 题库维护（管理员）
		authGroup.POST("/topics", middleware.RoleMiddleware(model.Admin), c.topic.CreateTopic)

		// 测验
		authGroup.POST("/quiz/daily", c.quiz.DailyQuiz)
		authGroup.POST("/quiz/custom", c.quiz.CustomQuiz)
		authGroup.GET("/quiz/attempts", c.quiz.ListAttempts)
		authGroup.GET("/quiz/attempts/:id", c.quiz.GetAttempt)
		authGroup.POST("/quiz/attempts/:id/answers", c.quiz.SubmitAnswer)
		authGroup.POST("/quiz/attempts/:id/complete", c.quiz.Complete)
		authGroup.POST("/quiz/attempts/:id/abandon", c.quiz.Abandon)

		// 分析与推荐
		authGroup.GET("/analytics", c.analytics.GetAnalytics)
		authGroup.GET("/analytics/recommendations", c.analytics.GetRecommendations)
	}
}
