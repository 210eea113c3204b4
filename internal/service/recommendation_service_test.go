package service

import (
	"testing"

	"quiz_prep_backend/internal/model"
)

func TestRankWeakTopicsWeakestFirst(t *testing.T) {
	perf := []model.TopicPerformance{
		{TopicID: 1, MeanCorrect: 0.9, Answered: 10},
		{TopicID: 2, MeanCorrect: 0.2, Answered: 10},
		{TopicID: 3, MeanCorrect: 0.5, Answered: 10},
	}

	got := rankWeakTopics(perf, 3, 5)
	if len(got) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(got))
	}
	if got[0].TopicID != 2 || got[1].TopicID != 3 || got[2].TopicID != 1 {
		t.Errorf("order wrong: %+v", got)
	}
}

func TestRankWeakTopicsSampleThreshold(t *testing.T) {
	perf := []model.TopicPerformance{
		{TopicID: 1, MeanCorrect: 0.1, Answered: 2}, // 样本不足
		{TopicID: 2, MeanCorrect: 0.8, Answered: 5},
	}

	got := rankWeakTopics(perf, 3, 5)
	if len(got) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(got))
	}
	if got[0].TopicID != 2 {
		t.Errorf("undersampled topic recommended: %+v", got)
	}
}

func TestRankWeakTopicsTieBreakByID(t *testing.T) {
	perf := []model.TopicPerformance{
		{TopicID: 9, MeanCorrect: 0.5, Answered: 5},
		{TopicID: 3, MeanCorrect: 0.5, Answered: 5},
	}

	got := rankWeakTopics(perf, 3, 5)
	if len(got) != 2 || got[0].TopicID != 3 || got[1].TopicID != 9 {
		t.Errorf("tie should break by topic id: %+v", got)
	}
}

func TestRankWeakTopicsTruncates(t *testing.T) {
	perf := []model.TopicPerformance{
		{TopicID: 1, MeanCorrect: 0.1, Answered: 5},
		{TopicID: 2, MeanCorrect: 0.2, Answered: 5},
		{TopicID: 3, MeanCorrect: 0.3, Answered: 5},
	}

	got := rankWeakTopics(perf, 3, 2)
	if len(got) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(got))
	}
	if got[0].TopicID != 1 || got[1].TopicID != 2 {
		t.Errorf("truncation should keep the weakest: %+v", got)
	}
}

func TestRankWeakTopicsEmpty(t *testing.T) {
	if got := rankWeakTopics(nil, 3, 5); len(got) != 0 {
		t.Errorf("no performance data should yield no recommendations, got %+v", got)
	}
}
