package model

// swagger:model Topic
type Topic struct {
	BaseModel
	Name            string `gorm:"size:100;unique;not null" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	Category        string `gorm:"size:50;not null" json:"category"` // programming, aptitude, technical, hr
	DifficultyLevel string `gorm:"size:10;default:'medium'" json:"difficultyLevel"`
	IsDefault       bool   `gorm:"default:false" json:"isDefault"` // 系统预置主题，用于补足不足的订阅
}

func (Topic) TableName() string {
	return "topics"
}

// UserTopic 用户订阅的主题。取消订阅时置 is_active=false，不做物理删除，
// 历史测验仍会引用该主题。
// swagger:model UserTopic
type UserTopic struct {
	BaseModel
	UserID   uint `gorm:"index;type:bigint unsigned;not null;uniqueIndex:idx_user_topic" json:"userId"`
	TopicID  uint `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_user_topic" json:"topicId"`
	Priority int  `gorm:"default:1" json:"priority"` // 数值越小越优先
	IsActive bool `gorm:"default:true" json:"isActive"`
}

func (UserTopic) TableName() string {
	return "user_topics"
}
