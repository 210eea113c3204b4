package service

import (
	"errors"
	"math"
	"testing"

	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/util"
)

func TestCanSubmitAnswerTerminalLock(t *testing.T) {
	if err := canSubmitAnswer(model.AttemptInProgress); err != nil {
		t.Errorf("canSubmitAnswer(in_progress) = %v, want nil", err)
	}
	// 迟到的作答：完成或放弃之后一律拒绝
	for _, status := range []string{model.AttemptCompleted, model.AttemptAbandoned} {
		if err := canSubmitAnswer(status); !errors.Is(err, util.ErrAttemptNotActive) {
			t.Errorf("canSubmitAnswer(%s) = %v, want ErrAttemptNotActive", status, err)
		}
	}
}

func TestCompleteTransition(t *testing.T) {
	cases := []struct {
		status    string
		wantApply bool
		wantErr   error
	}{
		{model.AttemptInProgress, true, nil},
		// 重复 complete 是空操作，completed_at 和分数保持首次结果
		{model.AttemptCompleted, false, nil},
		{model.AttemptAbandoned, false, util.ErrAttemptNotActive},
	}
	for _, tc := range cases {
		apply, err := completeTransition(tc.status)
		if apply != tc.wantApply {
			t.Errorf("completeTransition(%s) apply = %v, want %v", tc.status, apply, tc.wantApply)
		}
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("completeTransition(%s) err = %v, want %v", tc.status, err, tc.wantErr)
		}
	}
}

func TestAbandonTransitionTerminalNoop(t *testing.T) {
	if !abandonTransition(model.AttemptInProgress) {
		t.Error("abandonTransition(in_progress) = false, want true")
	}
	for _, status := range []string{model.AttemptCompleted, model.AttemptAbandoned} {
		if abandonTransition(status) {
			t.Errorf("abandonTransition(%s) = true, want false", status)
		}
	}
}

func TestEvaluateAnswerCaseAndWhitespace(t *testing.T) {
	q := &model.Question{QuestionType: model.QuestionTypeText, CorrectAnswer: "Dynamic Programming"}

	cases := []struct {
		answer string
		want   bool
	}{
		{"Dynamic Programming", true},
		{"dynamic programming", true},
		{"  DYNAMIC   PROGRAMMING  ", true},
		{"dynamic", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := evaluateAnswer(q, tc.answer); got != tc.want {
			t.Errorf("evaluateAnswer(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestEvaluateAnswerMultiSelectIgnoresOrder(t *testing.T) {
	q := &model.Question{
		QuestionType:  model.QuestionTypeMultiSelect,
		CorrectAnswer: "Read replicas,Caching",
	}

	cases := []struct {
		answer string
		want   bool
	}{
		{"Read replicas,Caching", true},
		{"Caching,Read replicas", true},
		{"caching, READ REPLICAS", true},
		{"Caching", false},
		{"Read replicas,Caching,CDN", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := evaluateAnswer(q, tc.answer); got != tc.want {
			t.Errorf("evaluateAnswer(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestTallyAnswers(t *testing.T) {
	yes, no := true, false
	rows := []model.QuizQuestion{
		{IsCorrect: &yes, TimeTaken: 30},
		{IsCorrect: &no, TimeTaken: 45},
		{IsCorrect: &yes, TimeTaken: 15},
		{IsCorrect: nil}, // 未作答
	}

	answered, correct, totalTime := tallyAnswers(rows)
	if answered != 3 {
		t.Errorf("answered = %d, want 3", answered)
	}
	if correct != 2 {
		t.Errorf("correct = %d, want 2", correct)
	}
	if totalTime != 90 {
		t.Errorf("totalTime = %d, want 90", totalTime)
	}
}

func TestScorePercentage(t *testing.T) {
	cases := []struct {
		correct, total int
		want           float64
	}{
		{6, 10, 60.0},
		{0, 10, 0},
		{10, 10, 100.0},
		{0, 0, 0}, // 全未作答直接完成
		{1, 3, 100.0 / 3.0},
	}
	for _, tc := range cases {
		got := scorePercentage(tc.correct, tc.total)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("scorePercentage(%d, %d) = %v, want %v", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestNormalizeAnswer(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Hello   World  ", "hello world"},
		{"HELLO", "hello"},
		{"\tfoo\nbar", "foo bar"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeAnswer(tc.in); got != tc.want {
			t.Errorf("normalizeAnswer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
