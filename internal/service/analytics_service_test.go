package service

import (
	"math"
	"testing"
	"time"

	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
)

func TestParseLocalDateKeepsCalendarDay(t *testing.T) {
	// UTC-8：按 UTC 解析再换时区会把日历日前移一天
	loc := time.FixedZone("UTC-8", -8*3600)

	got, err := parseLocalDate("2026-08-31", loc)
	if err != nil {
		t.Fatalf("parseLocalDate: %v", err)
	}
	if got.Format("2006-01-02") != "2026-08-31" {
		t.Errorf("calendar day = %s, want 2026-08-31", got.Format("2006-01-02"))
	}
	if got.Location() != loc {
		t.Errorf("location = %v, want %v", got.Location(), loc)
	}

	// 对照：旧的 UTC 中转路径确实会漂移
	utcParsed, _ := time.Parse("2006-01-02", "2026-08-31")
	if shifted := utcParsed.In(loc).Format("2006-01-02"); shifted != "2026-08-30" {
		t.Fatalf("expected the UTC round-trip to shift to 2026-08-30, got %s", shifted)
	}
}

func TestComputeStreakConsecutiveDays(t *testing.T) {
	completed := []string{"2026-08-28", "2026-08-29", "2026-08-30"}

	// 今天(8-31)还没完成，连续3天的记录保留
	if got := computeStreak(completed, "2026-08-31"); got != 3 {
		t.Errorf("streak = %d, want 3", got)
	}
	// 今天也完成了
	completed = append(completed, "2026-08-31")
	if got := computeStreak(completed, "2026-08-31"); got != 4 {
		t.Errorf("streak = %d, want 4", got)
	}
}

func TestComputeStreakBrokenByGap(t *testing.T) {
	completed := []string{"2026-08-26", "2026-08-27", "2026-08-30"}

	// 8-28、8-29 断档，只剩 8-30 这一天
	if got := computeStreak(completed, "2026-08-30"); got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
}

func TestComputeStreakStaleCompletion(t *testing.T) {
	// 最近完成日早于昨天，连续中断
	if got := computeStreak([]string{"2026-08-25"}, "2026-08-31"); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestComputeStreakEmpty(t *testing.T) {
	if got := computeStreak(nil, "2026-08-31"); got != 0 {
		t.Errorf("streak = %d, want 0", got)
	}
}

func TestAverageScore(t *testing.T) {
	completed := []model.QuizAttempt{
		{ScorePercentage: 80},
		{ScorePercentage: 60},
		{ScorePercentage: 100},
	}
	if got := averageScore(completed); math.Abs(got-80) > 1e-9 {
		t.Errorf("averageScore = %v, want 80", got)
	}
	if got := averageScore(nil); got != 0 {
		t.Errorf("averageScore(empty) = %v, want 0", got)
	}
}

func TestWeeklyProgress(t *testing.T) {
	completed := []string{"2026-08-29", "2026-08-31"}

	week := weeklyProgress(completed, "2026-08-31")
	if len(week) != 7 {
		t.Fatalf("got %d days, want 7", len(week))
	}
	if week[0].Date != "2026-08-25" {
		t.Errorf("week starts at %s, want 2026-08-25", week[0].Date)
	}
	if week[6].Date != "2026-08-31" {
		t.Errorf("week ends at %s, want 2026-08-31", week[6].Date)
	}
	for _, day := range week {
		wantCompleted := day.Date == "2026-08-29" || day.Date == "2026-08-31"
		if day.Completed != wantCompleted {
			t.Errorf("day %s completed = %v, want %v", day.Date, day.Completed, wantCompleted)
		}
	}
}

func TestAggregateTopicPerformance(t *testing.T) {
	rows := []repository.TopicAnswerRow{
		{TopicID: 2, AttemptID: 10, IsCorrect: true},
		{TopicID: 2, AttemptID: 10, IsCorrect: false},
		{TopicID: 2, AttemptID: 11, IsCorrect: true},
		{TopicID: 1, AttemptID: 10, IsCorrect: false},
	}
	names := map[uint]string{1: "Algorithms", 2: "System Design"}

	perf := aggregateTopicPerformance(rows, names)
	if len(perf) != 2 {
		t.Fatalf("got %d topics, want 2", len(perf))
	}

	// 按主题ID升序
	if perf[0].TopicID != 1 || perf[1].TopicID != 2 {
		t.Fatalf("topics out of order: %+v", perf)
	}

	algo := perf[0]
	if algo.TopicName != "Algorithms" || algo.Answered != 1 || algo.Correct != 0 || algo.MeanCorrect != 0 {
		t.Errorf("algorithms aggregate wrong: %+v", algo)
	}

	sd := perf[1]
	if sd.Answered != 3 || sd.Correct != 2 || sd.AttemptsCount != 2 {
		t.Errorf("system design aggregate wrong: %+v", sd)
	}
	if math.Abs(sd.MeanCorrect-2.0/3.0) > 1e-9 {
		t.Errorf("mean correct = %v, want 2/3", sd.MeanCorrect)
	}
}

func TestAggregateTopicPerformanceEmpty(t *testing.T) {
	if perf := aggregateTopicPerformance(nil, nil); len(perf) != 0 {
		t.Errorf("empty rows should aggregate to nothing, got %+v", perf)
	}
}
