package repository

import (
	"quiz_prep_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// FindEligible 某主题下已验证且未被排除的题目。excludeIDs 为空时不做排除。
func (r *QuestionRepository) FindEligible(topicID uint, excludeIDs []uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	query := r.DB.Where("topic_id = ? AND is_verified = ?", topicID, true)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	err := query.Order("id ASC").Limit(limit).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CountVerifiedByTopic(topicID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("topic_id = ? AND is_verified = ?", topicID, true).
		Count(&count).Error
	return count, err
}
