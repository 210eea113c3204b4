package service

import (
	"errors"

	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/internal/util"

	"gorm.io/gorm"
)

type TopicService struct {
	TopicRepo    *repository.TopicRepository
	QuestionRepo *repository.QuestionRepository
}

func NewTopicService(topicRepo *repository.TopicRepository, questionRepo *repository.QuestionRepository) *TopicService {
	return &TopicService{TopicRepo: topicRepo, QuestionRepo: questionRepo}
}

func (s *TopicService) ListTopics(category string) ([]model.Topic, error) {
	return s.TopicRepo.FindAll(category)
}

// CreateTopic 扩充题库目录（管理员操作）
func (s *TopicService) CreateTopic(topic *model.Topic) error {
	return s.TopicRepo.Create(topic)
}

// SubscriptionInfo 订阅及其主题信息
type SubscriptionInfo struct {
	TopicID       uint   `json:"topicId"`
	TopicName     string `json:"topicName"`
	Category      string `json:"category"`
	Priority      int    `json:"priority"`
	QuestionCount int64  `json:"questionCount"` // 该主题下已验证题目数
}

func (s *TopicService) ListSubscriptions(userID uint) ([]SubscriptionInfo, error) {
	subs, err := s.TopicRepo.FindActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.TopicID)
	}
	topics, err := s.TopicRepo.FindByIDsMap(ids)
	if err != nil {
		return nil, err
	}

	result := make([]SubscriptionInfo, 0, len(subs))
	for _, sub := range subs {
		info := SubscriptionInfo{
			TopicID:  sub.TopicID,
			Priority: sub.Priority,
		}
		if t, ok := topics[sub.TopicID]; ok {
			info.TopicName = t.Name
			info.Category = t.Category
		}
		if count, err := s.QuestionRepo.CountVerifiedByTopic(sub.TopicID); err == nil {
			info.QuestionCount = count
		}
		result = append(result, info)
	}
	return result, nil
}

// Subscribe 订阅主题。之前退订过的重新激活并更新优先级。
func (s *TopicService) Subscribe(userID, topicID uint, priority int) error {
	if _, err := s.TopicRepo.FindByID(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTopicNotFound
		}
		return err
	}
	if priority <= 0 {
		priority = 1
	}

	sub, err := s.TopicRepo.FindSubscription(userID, topicID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.TopicRepo.CreateSubscription(&model.UserTopic{
			UserID:   userID,
			TopicID:  topicID,
			Priority: priority,
			IsActive: true,
		})
	}

	sub.IsActive = true
	sub.Priority = priority
	return s.TopicRepo.SaveSubscription(sub)
}

// Unsubscribe 软删除：历史测验仍引用该订阅，只置 is_active=false
func (s *TopicService) Unsubscribe(userID, topicID uint) error {
	sub, err := s.TopicRepo.FindSubscription(userID, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTopicNotFound
		}
		return err
	}
	sub.IsActive = false
	return s.TopicRepo.SaveSubscription(sub)
}

func (s *TopicService) SetPriority(userID, topicID uint, priority int) error {
	sub, err := s.TopicRepo.FindSubscription(userID, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTopicNotFound
		}
		return err
	}
	if priority <= 0 {
		priority = 1
	}
	sub.Priority = priority
	return s.TopicRepo.SaveSubscription(sub)
}

// SelectQuizTopics 为一次测验产出有序主题列表：活跃订阅按优先级升序
// （数值小的先选，同优先级按主题ID），不足 maxTopics 时用未选中的
// 默认主题按ID补足。无活跃订阅且无默认主题时返回 ErrNoActiveTopics。
func (s *TopicService) SelectQuizTopics(userID uint, maxTopics int) ([]uint, error) {
	subs, err := s.TopicRepo.FindActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	defaults, err := s.TopicRepo.FindDefaults()
	if err != nil {
		return nil, err
	}

	selected := orderQuizTopics(subs, defaults, maxTopics)
	if len(selected) == 0 {
		return nil, util.ErrNoActiveTopics
	}
	return selected, nil
}

// orderQuizTopics 纯选题逻辑。subs 已按 priority ASC, topic_id ASC 排序。
func orderQuizTopics(subs []model.UserTopic, defaults []model.Topic, maxTopics int) []uint {
	selected := make([]uint, 0, maxTopics)
	seen := make(map[uint]bool)

	for _, sub := range subs {
		if len(selected) >= maxTopics {
			break
		}
		if seen[sub.TopicID] {
			continue
		}
		selected = append(selected, sub.TopicID)
		seen[sub.TopicID] = true
	}

	// 订阅不足时用默认主题补到目标数量
	for _, t := range defaults {
		if len(selected) >= maxTopics {
			break
		}
		if seen[t.ID] {
			continue
		}
		selected = append(selected, t.ID)
		seen[t.ID] = true
	}

	return selected
}
