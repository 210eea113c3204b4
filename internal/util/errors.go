package util

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrNoActiveTopics        = errors.New("no active topics and no default topics available")
	ErrInsufficientQuestions = errors.New("no eligible questions for topic")
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrAttemptNotActive      = errors.New("attempt is not in progress")
	ErrQuestionNotInAttempt  = errors.New("question is not part of this attempt")
	ErrNotAttemptOwner       = errors.New("attempt does not belong to this user")
	ErrTopicNotFound         = errors.New("topic not found")
	ErrUserNotFound          = errors.New("用户不存在")
	ErrEmailRegistered       = errors.New("该邮箱已被注册")
	ErrDuplicateDailyRecord  = errors.New("duplicate daily quiz record detected")
	ErrDailyRecordOrphaned   = errors.New("daily quiz record is missing its attempt")
)

// ErrorKind 错误分类，决定返回给调用方的处理方式
type ErrorKind int

const (
	KindValidation        ErrorKind = iota // 调用方输入错误
	KindStateConflict                      // 非法状态迁移
	KindResourceExhausted                  // 降级后仍无可用主题/题目
	KindTransientIO                        // 存储或协作方暂不可用，可重试
	KindInvariant                          // 不变量被破坏，属于 bug，必须上报
)

// KindOf 将错误归入分类。未识别的错误一律当作暂时性 IO 失败向上抛，不吞掉。
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrQuestionNotInAttempt),
		errors.Is(err, ErrNotAttemptOwner),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrTopicNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrEmailRegistered),
		errors.Is(err, gorm.ErrRecordNotFound):
		return KindValidation
	case errors.Is(err, ErrAttemptNotActive):
		return KindStateConflict
	case errors.Is(err, ErrNoActiveTopics), errors.Is(err, ErrInsufficientQuestions):
		return KindResourceExhausted
	case errors.Is(err, ErrDuplicateDailyRecord), errors.Is(err, ErrDailyRecordOrphaned):
		return KindInvariant
	default:
		return KindTransientIO
	}
}

// HTTPStatus 错误分类到 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		if errors.Is(err, ErrAttemptNotFound) || errors.Is(err, ErrTopicNotFound) ||
			errors.Is(err, gorm.ErrRecordNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case KindStateConflict:
		return http.StatusConflict
	case KindResourceExhausted:
		return http.StatusUnprocessableEntity
	case KindInvariant:
		return http.StatusInternalServerError
	default:
		return http.StatusServiceUnavailable
	}
}
