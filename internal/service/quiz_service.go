package service

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"time"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/internal/util"
	"quiz_prep_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// QuizService 测验生命周期：in_progress → completed 或 in_progress → abandoned，
// 两者都是终态。题目列表在创建时冻结。
type QuizService struct {
	AttemptRepo  *repository.QuizAttemptRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
	Composer     *QuizComposer
	Analytics    *AnalyticsService
	Cfg          *config.QuizConfig
	DB           *gorm.DB
}

func NewQuizService(
	attemptRepo *repository.QuizAttemptRepository,
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	composer *QuizComposer,
	analytics *AnalyticsService,
	cfg *config.QuizConfig,
	db *gorm.DB,
) *QuizService {
	return &QuizService{
		AttemptRepo:  attemptRepo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
		Composer:     composer,
		Analytics:    analytics,
		Cfg:          cfg,
		DB:           db,
	}
}

// StartCustomQuiz 用户自选主题的即时测验，不占用每日名额
func (s *QuizService) StartCustomQuiz(userID uint, topicIDs []uint, questionCount int) (*model.QuizAttempt, error) {
	if len(topicIDs) == 0 {
		return nil, util.ErrNoActiveTopics
	}
	if questionCount <= 0 {
		questionCount = len(topicIDs)
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	countPerTopic := (questionCount + len(topicIDs) - 1) / len(topicIDs)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	questionIDs, err := s.Composer.Compose(userID, topicIDs, countPerTopic, rng)
	if err != nil {
		return nil, err
	}
	if len(questionIDs) > questionCount {
		questionIDs = questionIDs[:questionCount]
	}

	attempt := buildAttempt(userID, model.QuizTypeCustom, topicIDs, len(questionIDs), user.TimerEnabled)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.AttemptRepo.CreateWithQuestions(tx, attempt, questionIDs)
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

func buildAttempt(userID uint, quizType string, topicIDs []uint, totalQuestions int, timerEnabled bool) *model.QuizAttempt {
	covered, _ := json.Marshal(topicIDs)
	return &model.QuizAttempt{
		UserID:         userID,
		QuizType:       quizType,
		TotalQuestions: totalQuestions,
		TimerEnabled:   timerEnabled,
		Status:         model.AttemptInProgress,
		TopicsCovered:  string(covered),
		StartedAt:      time.Now(),
	}
}

// SubmitAnswer 作答。仅 in_progress 且题目在冻结列表内时合法；
// 重复提交覆盖旧答案并重新判分，不保留历史。
func (s *QuizService) SubmitAnswer(userID, attemptID, questionID uint, answer string, timeTaken int) (*model.QuizQuestion, error) {
	var row *model.QuizQuestion

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.AttemptRepo.FindByIDTx(tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if attempt.UserID != userID {
			return util.ErrNotAttemptOwner
		}
		// 状态在事务内、持行锁校验：complete 提交后迟到的作答在这里被拒绝
		if err := canSubmitAnswer(attempt.Status); err != nil {
			return err
		}

		row, err = s.AttemptRepo.FindQuestionRow(tx, attemptID, questionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrQuestionNotInAttempt
			}
			return err
		}

		question, err := s.QuestionRepo.FindByID(questionID)
		if err != nil {
			return err
		}

		isCorrect := evaluateAnswer(question, answer)
		now := time.Now()
		row.UserAnswer = &answer
		row.IsCorrect = &isCorrect
		row.TimeTaken = timeTaken
		row.AnsweredAt = &now

		return tx.Save(row).Error
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Complete 结束测验并判分。未作答的题按答错计：
// score = correct / total_questions * 100，total 取冻结的题目数。
// 对已完成的测验重复调用是幂等空操作，返回原结果。
func (s *QuizService) Complete(userID, attemptID uint) (*model.QuizAttempt, error) {
	var attempt *model.QuizAttempt
	var transitioned bool

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		attempt, err = s.AttemptRepo.FindByIDTx(tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if userID != 0 && attempt.UserID != userID {
			return util.ErrNotAttemptOwner
		}
		apply, terr := completeTransition(attempt.Status)
		if terr != nil {
			return terr
		}
		if !apply {
			return nil // 幂等：不再改动 completed_at 和分数
		}

		var rows []model.QuizQuestion
		if err := tx.Where("attempt_id = ?", attemptID).Find(&rows).Error; err != nil {
			return err
		}

		answered, correct, totalTime := tallyAnswers(rows)
		now := time.Now()
		attempt.CompletedQuestions = answered
		attempt.CorrectAnswers = correct
		attempt.TotalTimeTaken = totalTime
		attempt.ScorePercentage = scorePercentage(correct, attempt.TotalQuestions)
		attempt.Status = model.AttemptCompleted
		attempt.CompletedAt = &now
		transitioned = true

		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		monitoring.AttemptsCompleted.WithLabelValues(model.AttemptCompleted).Inc()
		// 同步重算分析快照；快照只读已完成数据，重复触发是安全的
		s.Analytics.OnAttemptCompleted(attempt.UserID)
	}
	return attempt, nil
}

// Abandon 放弃测验。对已终态的测验是空操作（超时清扫可能与用户操作竞争）。
func (s *QuizService) Abandon(userID, attemptID uint, reason string) (*model.QuizAttempt, error) {
	var attempt *model.QuizAttempt
	var transitioned bool

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		attempt, err = s.AttemptRepo.FindByIDTx(tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if userID != 0 && attempt.UserID != userID {
			return util.ErrNotAttemptOwner
		}
		if !abandonTransition(attempt.Status) {
			return nil
		}

		attempt.Status = model.AttemptAbandoned
		attempt.AbandonReason = reason
		transitioned = true
		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		monitoring.AttemptsCompleted.WithLabelValues(model.AttemptAbandoned).Inc()
	}
	return attempt, nil
}

// AttemptQuestionView 测验详情中的一道题。正确答案和解析只在测验结束后给出。
type AttemptQuestionView struct {
	QuestionID      uint    `json:"questionId"`
	Position        int     `json:"position"`
	QuestionText    string  `json:"questionText"`
	QuestionType    string  `json:"questionType"`
	DifficultyLevel string  `json:"difficultyLevel"`
	Options         string  `json:"options,omitempty"`
	UserAnswer      *string `json:"userAnswer,omitempty"`
	IsCorrect       *bool   `json:"isCorrect,omitempty"`
	TimeTaken       int     `json:"timeTaken,omitempty"`
	CorrectAnswer   string  `json:"correctAnswer,omitempty"`
	AIExplanation   string  `json:"aiExplanation,omitempty"`
}

type AttemptDetail struct {
	Attempt   *model.QuizAttempt    `json:"attempt"`
	Questions []AttemptQuestionView `json:"questions"`
}

func (s *QuizService) GetAttempt(userID, attemptID uint) (*AttemptDetail, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrNotAttemptOwner
	}

	rows, err := s.AttemptRepo.FindQuestions(attemptID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.QuestionID)
	}
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	terminal := attempt.Status != model.AttemptInProgress
	views := make([]AttemptQuestionView, 0, len(rows))
	for _, row := range rows {
		view := AttemptQuestionView{
			QuestionID: row.QuestionID,
			Position:   row.Position,
			UserAnswer: row.UserAnswer,
			IsCorrect:  row.IsCorrect,
			TimeTaken:  row.TimeTaken,
		}
		if q, ok := byID[row.QuestionID]; ok {
			view.QuestionText = q.QuestionText
			view.QuestionType = q.QuestionType
			view.DifficultyLevel = q.DifficultyLevel
			view.Options = q.Options
			if terminal {
				view.CorrectAnswer = q.CorrectAnswer
				view.AIExplanation = q.AIExplanation
			}
		}
		views = append(views, view)
	}

	return &AttemptDetail{Attempt: attempt, Questions: views}, nil
}

func (s *QuizService) ListAttempts(userID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.AttemptRepo.ListByUser(userID, page, limit)
}

// canSubmitAnswer 终态（completed/abandoned）测验拒绝一切作答
func canSubmitAnswer(status string) error {
	if status != model.AttemptInProgress {
		return util.ErrAttemptNotActive
	}
	return nil
}

// completeTransition 完成操作的状态迁移：in_progress 正常落库，
// completed 幂等空操作，abandoned 拒绝。
func completeTransition(status string) (apply bool, err error) {
	switch status {
	case model.AttemptCompleted:
		return false, nil
	case model.AttemptAbandoned:
		return false, util.ErrAttemptNotActive
	default:
		return true, nil
	}
}

// abandonTransition 只有 in_progress 需要真正落库；超时清扫与用户
// 操作竞争时，后到者是空操作。
func abandonTransition(status string) bool {
	return status == model.AttemptInProgress
}

func tallyAnswers(rows []model.QuizQuestion) (answered, correct, totalTime int) {
	for _, row := range rows {
		if row.IsCorrect == nil {
			continue
		}
		answered++
		totalTime += row.TimeTaken
		if *row.IsCorrect {
			correct++
		}
	}
	return answered, correct, totalTime
}

func scorePercentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// evaluateAnswer 判分。文本类忽略大小写与空白差异；多选题按集合相等，
// 与选项顺序无关。
func evaluateAnswer(q *model.Question, answer string) bool {
	if q.QuestionType == model.QuestionTypeMultiSelect {
		return answerSetsEqual(q.CorrectAnswer, answer)
	}
	return normalizeAnswer(answer) == normalizeAnswer(q.CorrectAnswer)
}

func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func answerSetsEqual(expected, actual string) bool {
	parse := func(s string) map[string]bool {
		set := make(map[string]bool)
		for _, part := range strings.Split(s, ",") {
			if norm := normalizeAnswer(part); norm != "" {
				set[norm] = true
			}
		}
		return set
	}

	want, got := parse(expected), parse(actual)
	if len(want) != len(got) {
		return false
	}
	for k := range want {
		if !got[k] {
			return false
		}
	}
	return true
}
