package model

import "time"

const (
	QuizTypeDaily  = "daily"
	QuizTypeCustom = "custom"

	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
	AttemptAbandoned  = "abandoned"
)

// QuizAttempt 一次测验。题目列表在创建时由 QuizQuestion 行固定，之后不再变更。
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID   uint   `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	QuizType string `gorm:"size:10;default:'daily'" json:"quizType"` // daily, custom

	TotalQuestions     int `gorm:"not null" json:"totalQuestions"`
	CompletedQuestions int `gorm:"default:0" json:"completedQuestions"`
	CorrectAnswers     int `gorm:"default:0" json:"correctAnswers"`

	TotalTimeTaken int  `json:"totalTimeTaken"` // 秒
	TimerEnabled   bool `gorm:"default:true" json:"timerEnabled"`

	Status          string  `gorm:"size:15;default:'in_progress';index" json:"status"`
	ScorePercentage float64 `json:"scorePercentage"`
	AbandonReason   string  `gorm:"size:100" json:"abandonReason,omitempty"`

	TopicsCovered string `gorm:"type:json" json:"topicsCovered"` // 主题ID列表（JSON array）

	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// QuizQuestion 测验中的一道题及用户作答。行在测验创建时生成（冻结题目列表），
// 作答只更新已有行，重复提交覆盖之前的答案。
// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	AttemptID  uint `gorm:"index;type:bigint unsigned;not null;uniqueIndex:idx_attempt_question" json:"attemptId"`
	QuestionID uint `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_attempt_question" json:"questionId"`
	Position   int  `gorm:"default:0" json:"position"`

	UserAnswer *string    `gorm:"size:500" json:"userAnswer,omitempty"`
	IsCorrect  *bool      `json:"isCorrect,omitempty"`
	TimeTaken  int        `json:"timeTaken"` // 秒
	AnsweredAt *time.Time `json:"answeredAt,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// DailyQuizRecord 每用户每天唯一的每日测验记录。(user_id, quiz_date) 唯一索引
// 是防止并发触发重复生成的权威保证。无可用主题的日子记为 skipped。
// swagger:model DailyQuizRecord
type DailyQuizRecord struct {
	BaseModel
	UserID   uint   `gorm:"type:bigint unsigned;not null;uniqueIndex:idx_user_quiz_date" json:"userId"`
	QuizDate string `gorm:"size:10;not null;uniqueIndex:idx_user_quiz_date" json:"quizDate"` // YYYY-MM-DD（用户时区）

	AttemptID *uint `gorm:"type:bigint unsigned" json:"attemptId,omitempty"`
	Skipped   bool  `gorm:"default:false" json:"skipped"`
}

func (DailyQuizRecord) TableName() string {
	return "daily_quiz_records"
}
