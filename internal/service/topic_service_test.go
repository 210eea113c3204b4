package service

import (
	"testing"

	"quiz_prep_backend/internal/model"
)

func subsFor(topicIDs ...uint) []model.UserTopic {
	subs := make([]model.UserTopic, 0, len(topicIDs))
	for _, id := range topicIDs {
		subs = append(subs, model.UserTopic{TopicID: id})
	}
	return subs
}

func defaultsFor(ids ...uint) []model.Topic {
	topics := make([]model.Topic, 0, len(ids))
	for _, id := range ids {
		t := model.Topic{IsDefault: true}
		t.ID = id
		topics = append(topics, t)
	}
	return topics
}

func TestOrderQuizTopicsKeepsSubscriptionOrder(t *testing.T) {
	got := orderQuizTopics(subsFor(5, 2, 9), nil, 10)

	want := []uint{5, 2, 9}
	if len(got) != len(want) {
		t.Fatalf("got %d topics, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got topic %d, want %d", i, got[i], want[i])
		}
	}
}

func TestOrderQuizTopicsTruncatesAtMax(t *testing.T) {
	got := orderQuizTopics(subsFor(1, 2, 3, 4, 5), nil, 3)

	if len(got) != 3 {
		t.Fatalf("got %d topics, want 3", len(got))
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("truncation should keep the highest-priority topics, got %v", got)
	}
}

func TestOrderQuizTopicsPadsWithDefaults(t *testing.T) {
	got := orderQuizTopics(subsFor(7), defaultsFor(1, 2, 3), 3)

	if len(got) != 3 {
		t.Fatalf("got %d topics, want 3", len(got))
	}
	if got[0] != 7 {
		t.Errorf("subscribed topic must come first, got %v", got)
	}
	if got[1] != 1 || got[2] != 2 {
		t.Errorf("defaults should pad in catalog order, got %v", got)
	}
}

func TestOrderQuizTopicsDeduplicates(t *testing.T) {
	// 订阅里的重复项和与默认主题的重叠都只算一次
	got := orderQuizTopics(subsFor(1, 1, 2), defaultsFor(2, 3), 10)

	want := []uint{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got topic %d, want %d", i, got[i], want[i])
		}
	}
}

func TestOrderQuizTopicsEmpty(t *testing.T) {
	if got := orderQuizTopics(nil, nil, 10); len(got) != 0 {
		t.Errorf("no subscriptions and no defaults should select nothing, got %v", got)
	}
}
