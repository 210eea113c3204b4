package model

// AnalyticsSnapshot 由已完成的测验历史推导出的只读快照，可随时重算，不持有独立事实。
// swagger:model AnalyticsSnapshot
type AnalyticsSnapshot struct {
	Streak           int                `json:"streak"`
	TotalQuizzes     int                `json:"totalQuizzes"`
	AverageScore     float64            `json:"averageScore"`
	WeeklyProgress   []DayProgress      `json:"weeklyProgress"` // 最近7天，旧到新
	TopicPerformance []TopicPerformance `json:"topicPerformance"`
}

// DayProgress 某天是否完成了每日测验
type DayProgress struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}

// TopicPerformance 某主题的答题正确率统计
type TopicPerformance struct {
	TopicID       uint    `json:"topicId"`
	TopicName     string  `json:"topicName"`
	Answered      int     `json:"answered"`
	Correct       int     `json:"correct"`
	MeanCorrect   float64 `json:"meanCorrect"` // 0.0 - 1.0
	AttemptsCount int     `json:"attemptsCount"`
}

// TopicRecommendation 推荐加强的主题
type TopicRecommendation struct {
	TopicID     uint    `json:"topicId"`
	TopicName   string  `json:"topicName"`
	MeanCorrect float64 `json:"meanCorrect"`
	Answered    int     `json:"answered"`
}
