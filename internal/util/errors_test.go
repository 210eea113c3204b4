package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{ErrQuestionNotInAttempt, KindValidation},
		{ErrNotAttemptOwner, KindValidation},
		{ErrAttemptNotFound, KindValidation},
		{gorm.ErrRecordNotFound, KindValidation},
		{ErrAttemptNotActive, KindStateConflict},
		{ErrNoActiveTopics, KindResourceExhausted},
		{ErrInsufficientQuestions, KindResourceExhausted},
		{ErrDuplicateDailyRecord, KindInvariant},
		{ErrDailyRecordOrphaned, KindInvariant},
		{errors.New("connection refused"), KindTransientIO},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("complete attempt: %w", ErrAttemptNotActive)
	if got := KindOf(wrapped); got != KindStateConflict {
		t.Errorf("KindOf(wrapped) = %d, want KindStateConflict", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrAttemptNotFound, http.StatusNotFound},
		{ErrTopicNotFound, http.StatusNotFound},
		{ErrNotAttemptOwner, http.StatusBadRequest},
		{ErrAttemptNotActive, http.StatusConflict},
		{ErrNoActiveTopics, http.StatusUnprocessableEntity},
		{ErrDuplicateDailyRecord, http.StatusInternalServerError},
		{errors.New("dial tcp: timeout"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
