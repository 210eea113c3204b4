package repository

import (
	"quiz_prep_backend/internal/model"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

func (r *TopicRepository) Create(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *TopicRepository) FindAll(category string) ([]model.Topic, error) {
	var topics []model.Topic
	query := r.DB.Order("id ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Find(&topics).Error
	return topics, err
}

func (r *TopicRepository) FindByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	if err := r.DB.First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// FindDefaults 系统预置主题，按 id 升序，用于确定性补足
func (r *TopicRepository) FindDefaults() ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Where("is_default = ?", true).Order("id ASC").Find(&topics).Error
	return topics, err
}

// NamesByIDs 主题ID到名称的映射
func (r *TopicRepository) NamesByIDs(ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var topics []model.Topic
	if err := r.DB.Where("id IN ?", ids).Find(&topics).Error; err != nil {
		return nil, err
	}
	for _, t := range topics {
		names[t.ID] = t.Name
	}
	return names, nil
}

// FindByIDsMap 主题ID到主题的映射
func (r *TopicRepository) FindByIDsMap(ids []uint) (map[uint]model.Topic, error) {
	result := make(map[uint]model.Topic, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var topics []model.Topic
	if err := r.DB.Where("id IN ?", ids).Find(&topics).Error; err != nil {
		return nil, err
	}
	for _, t := range topics {
		result[t.ID] = t
	}
	return result, nil
}

// FindActiveByUser 用户的活跃订阅，按优先级升序、主题ID升序（选题的确定性顺序）
func (r *TopicRepository) FindActiveByUser(userID uint) ([]model.UserTopic, error) {
	var subs []model.UserTopic
	err := r.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Order("priority ASC, topic_id ASC").
		Find(&subs).Error
	return subs, err
}

func (r *TopicRepository) FindSubscription(userID, topicID uint) (*model.UserTopic, error) {
	var sub model.UserTopic
	err := r.DB.Where("user_id = ? AND topic_id = ?", userID, topicID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *TopicRepository) CreateSubscription(sub *model.UserTopic) error {
	return r.DB.Create(sub).Error
}

func (r *TopicRepository) SaveSubscription(sub *model.UserTopic) error {
	return r.DB.Save(sub).Error
}
