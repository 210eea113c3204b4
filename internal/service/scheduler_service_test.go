package service

import (
	"errors"
	"testing"
	"time"

	"quiz_prep_backend/internal/util"
)

func TestNotificationDue(t *testing.T) {
	at := func(hhmm string) time.Time {
		parsed, err := time.Parse("15:04", hhmm)
		if err != nil {
			t.Fatalf("bad test time %q", hhmm)
		}
		return time.Date(2026, 8, 31, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	}

	cases := []struct {
		now      string
		notifyAt string
		want     bool
	}{
		{"08:59", "09:00", false},
		{"09:00", "09:00", true},
		{"14:30", "09:00", true},
		{"00:00", "09:00", false},
		{"10:00", "not-a-time", true}, // 非法配置回退到 09:00
		{"08:00", "not-a-time", false},
	}
	for _, tc := range cases {
		if got := notificationDue(at(tc.now), tc.notifyAt); got != tc.want {
			t.Errorf("notificationDue(%s, %q) = %v, want %v", tc.now, tc.notifyAt, got, tc.want)
		}
	}
}

func TestKindSkippable(t *testing.T) {
	if !kindSkippable(util.ErrNoActiveTopics) {
		t.Error("no active topics should be skippable")
	}
	if !kindSkippable(util.ErrInsufficientQuestions) {
		t.Error("insufficient questions should be skippable")
	}
	if kindSkippable(errors.New("connection reset")) {
		t.Error("transient errors must not silently skip the day")
	}
	// 补生成落败只能回退到胜者的测验，绝不能把当天重新标成 skipped
	if kindSkippable(errBackfillLost) {
		t.Error("losing the backfill race must fall through to the winner's attempt")
	}
}
