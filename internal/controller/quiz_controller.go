package controller

import (
	"strconv"
	"time"

	"quiz_prep_backend/internal/service"
	"quiz_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService      *service.QuizService
	SchedulerService *service.SchedulerService
}

func NewQuizController(quizService *service.QuizService, schedulerService *service.SchedulerService) *QuizController {
	return &QuizController{
		QuizService:      quizService,
		SchedulerService: schedulerService,
	}
}

// @Summary 获取或生成今日测验
// @Description 同一用户同一天重复调用返回同一份测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/daily [post]
func (c *QuizController) DailyQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.SchedulerService.EnsureDailyQuiz(claims.UserID, time.Now())
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	detail, err := c.QuizService.GetAttempt(claims.UserID, attempt.ID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

type CustomQuizRequest struct {
	TopicIDs      []uint `json:"topic_ids" binding:"required,min=1"`
	QuestionCount int    `json:"question_count" binding:"required,min=1,max=50"`
}

// @Summary 创建自定义测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CustomQuizRequest true "主题与题量"
// @Success 201 {object} util.Response
// @Router /api/quiz/custom [post]
func (c *QuizController) CustomQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CustomQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.QuizService.StartCustomQuiz(claims.UserID, req.TopicIDs, req.QuestionCount)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	detail, err := c.QuizService.GetAttempt(claims.UserID, attempt.ID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, detail)
}

// @Summary 测验记录列表
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/quiz/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	attempts, total, err := c.QuizService.ListAttempts(claims.UserID, page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  attempts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 测验详情
// @Description 进行中的测验不返回正确答案
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quiz/attempts/{id} [get]
func (c *QuizController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	detail, err := c.QuizService.GetAttempt(claims.UserID, uint(attemptID))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
	TimeTaken  int    `json:"time_taken"`
}

// @Summary 提交答案
// @Description 重复提交同一题会覆盖之前的答案
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param request body SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/quiz/attempts/{id}/answers [post]
func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	row, err := c.QuizService.SubmitAnswer(claims.UserID, uint(attemptID), req.QuestionID, req.Answer, req.TimeTaken)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"question_id": row.QuestionID,
		"is_correct":  row.IsCorrect,
	})
}

// @Summary 完成测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quiz/attempts/{id}/complete [post]
func (c *QuizController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	attempt, err := c.QuizService.Complete(claims.UserID, uint(attemptID))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

type AbandonRequest struct {
	Reason string `json:"reason"`
}

// @Summary 放弃测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param request body AbandonRequest false "原因"
// @Success 200 {object} util.Response
// @Router /api/quiz/attempts/{id}/abandon [post]
func (c *QuizController) Abandon(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req AbandonRequest
	ctx.ShouldBindJSON(&req)

	attempt, err := c.QuizService.Abandon(claims.UserID, uint(attemptID), req.Reason)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}
