package service

import (
	"sort"
	"time"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/model"
)

// RecommendationService 从分析快照中找出最需要加强的主题
type RecommendationService struct {
	Analytics *AnalyticsService
	Cfg       *config.QuizConfig
}

func NewRecommendationService(analytics *AnalyticsService, cfg *config.QuizConfig) *RecommendationService {
	return &RecommendationService{
		Analytics: analytics,
		Cfg:       cfg,
	}
}

// Recommend 正确率最低的主题排在最前。答题数不足最小样本量的主题
// 不参与排名，避免稀疏数据带来噪声推荐。
func (s *RecommendationService) Recommend(userID uint) ([]model.TopicRecommendation, error) {
	snapshot, err := s.Analytics.Compute(userID, time.Now())
	if err != nil {
		return nil, err
	}
	return rankWeakTopics(snapshot.TopicPerformance, s.Cfg.MinSampleSize, s.Cfg.MaxRecommendations), nil
}

// rankWeakTopics 按平均正确率升序排名，同分按主题ID，最多返回 maxN 条
func rankWeakTopics(perf []model.TopicPerformance, minSamples, maxN int) []model.TopicRecommendation {
	eligible := make([]model.TopicPerformance, 0, len(perf))
	for _, p := range perf {
		if p.Answered >= minSamples {
			eligible = append(eligible, p)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].MeanCorrect != eligible[j].MeanCorrect {
			return eligible[i].MeanCorrect < eligible[j].MeanCorrect
		}
		return eligible[i].TopicID < eligible[j].TopicID
	})

	if len(eligible) > maxN {
		eligible = eligible[:maxN]
	}

	result := make([]model.TopicRecommendation, 0, len(eligible))
	for _, p := range eligible {
		result = append(result, model.TopicRecommendation{
			TopicID:     p.TopicID,
			TopicName:   p.TopicName,
			MeanCorrect: p.MeanCorrect,
			Answered:    p.Answered,
		})
	}
	return result
}
