package controller

import (
	"strconv"

	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/service"
	"quiz_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TopicController struct {
	TopicService *service.TopicService
}

func NewTopicController(topicService *service.TopicService) *TopicController {
	return &TopicController{TopicService: topicService}
}

// @Summary 主题列表
// @Tags 主题
// @Produce json
// @Param category query string false "分类过滤"
// @Success 200 {object} util.Response
// @Router /api/topics [get]
func (c *TopicController) ListTopics(ctx *gin.Context) {
	topics, err := c.TopicService.ListTopics(ctx.Query("category"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}

// @Summary 我的订阅
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/topics/subscriptions [get]
func (c *TopicController) ListSubscriptions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	subs, err := c.TopicService.ListSubscriptions(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

type CreateTopicRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DifficultyLevel string `json:"difficulty_level"`
	IsDefault       bool   `json:"is_default"`
}

// @Summary 新建主题
// @Description 仅管理员
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTopicRequest true "主题信息"
// @Success 201 {object} util.Response
// @Router /api/topics [post]
func (c *TopicController) CreateTopic(ctx *gin.Context) {
	var req CreateTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic := &model.Topic{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		DifficultyLevel: req.DifficultyLevel,
		IsDefault:       req.IsDefault,
	}
	if err := c.TopicService.CreateTopic(topic); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, topic)
}

type SubscribeRequest struct {
	Priority int `json:"priority"`
}

// @Summary 订阅主题
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Param request body SubscribeRequest false "优先级（数值越小越优先）"
// @Success 200 {object} util.Response
// @Router /api/topics/{id}/subscribe [post]
func (c *TopicController) Subscribe(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid topic id")
		return
	}

	var req SubscribeRequest
	ctx.ShouldBindJSON(&req)

	if err := c.TopicService.Subscribe(claims.UserID, uint(topicID), req.Priority); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 退订主题
// @Description 软删除，历史测验数据保留
// @Tags 主题
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Success 200 {object} util.Response
// @Router /api/topics/{id}/subscribe [delete]
func (c *TopicController) Unsubscribe(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid topic id")
		return
	}

	if err := c.TopicService.Unsubscribe(claims.UserID, uint(topicID)); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type PriorityRequest struct {
	Priority int `json:"priority" binding:"required,min=1"`
}

// @Summary 调整主题优先级
// @Tags 主题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "主题ID"
// @Param request body PriorityRequest true "优先级"
// @Success 200 {object} util.Response
// @Router /api/topics/{id}/priority [put]
func (c *TopicController) SetPriority(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid topic id")
		return
	}

	var req PriorityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.TopicService.SetPriority(claims.UserID, uint(topicID), req.Priority); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
