package model

const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeMultiSelect = "multi_select"
	QuestionTypeText        = "text"
)

// Question 由抓取/AI 流水线产出，核心只读取已验证的题目。
// swagger:model Question
type Question struct {
	BaseModel
	TopicID uint `gorm:"index;type:bigint unsigned;not null" json:"topicId"`

	QuestionText    string `gorm:"type:text;not null" json:"questionText"`
	QuestionType    string `gorm:"size:20;default:'mcq'" json:"questionType"` // mcq, multi_select, text
	DifficultyLevel string `gorm:"size:10;default:'medium'" json:"difficultyLevel"`

	Options       string `gorm:"type:json" json:"options"` // 选项（JSON array）
	CorrectAnswer string `gorm:"size:500" json:"-"`        // 多选题以逗号分隔

	// AI 生成内容
	AIAnswer      string  `gorm:"type:text" json:"aiAnswer,omitempty"`
	AIExplanation string  `gorm:"type:text" json:"aiExplanation,omitempty"`
	AIConfidence  float64 `json:"aiConfidence,omitempty"`

	// 来源信息
	SourceURL   string `gorm:"size:500" json:"sourceUrl,omitempty"`
	SourceName  string `gorm:"size:100" json:"sourceName,omitempty"`
	CompanyName string `gorm:"size:100" json:"companyName,omitempty"`

	Tags          string  `gorm:"type:json" json:"tags,omitempty"`
	EstimatedTime int     `json:"estimatedTime,omitempty"` // 秒
	IsVerified    bool    `gorm:"default:false;index" json:"isVerified"`
	Verification  float64 `gorm:"column:verification_score" json:"verificationScore,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
