package controller

import (
	"time"

	"quiz_prep_backend/internal/service"
	"quiz_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService      *service.AnalyticsService
	RecommendationService *service.RecommendationService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService, recommendationService *service.RecommendationService) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService:      analyticsService,
		RecommendationService: recommendationService,
	}
}

// @Summary 学习分析
// @Description 连续天数、平均分、近7天进度和各主题表现
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param as_of query string false "参考日期 YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response
// @Router /api/analytics [get]
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	// as_of 是日历日，按用户时区解释，这里只做格式校验
	if raw := ctx.Query("as_of"); raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			util.BadRequest(ctx, "as_of must be YYYY-MM-DD")
			return
		}
		snapshot, err := c.AnalyticsService.ComputeForDate(claims.UserID, raw)
		if err != nil {
			util.FromError(ctx, err)
			return
		}
		util.Success(ctx, snapshot)
		return
	}

	snapshot, err := c.AnalyticsService.Compute(claims.UserID, time.Now())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, snapshot)
}

// @Summary 薄弱主题推荐
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/analytics/recommendations [get]
func (c *AnalyticsController) GetRecommendations(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	recs, err := c.RecommendationService.Recommend(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, recs)
}
