package repository

import (
	"time"

	"quiz_prep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

// CreateWithQuestions 创建测验及其冻结的题目列表。必须在事务内调用，
// 题目行写入后不会再增删。
func (r *QuizAttemptRepository) CreateWithQuestions(tx *gorm.DB, attempt *model.QuizAttempt, questionIDs []uint) error {
	if err := tx.Create(attempt).Error; err != nil {
		return err
	}

	rows := make([]model.QuizQuestion, 0, len(questionIDs))
	for i, qid := range questionIDs {
		rows = append(rows, model.QuizQuestion{
			AttemptID:  attempt.ID,
			QuestionID: qid,
			Position:   i,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *QuizAttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	if err := r.DB.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindByIDTx 在事务内按主键取测验并加行锁，并发的作答与完成在
// 状态检查前先在测验行上串行化。
func (r *QuizAttemptRepository) FindByIDTx(tx *gorm.DB, id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizAttemptRepository) FindQuestions(attemptID uint) ([]model.QuizQuestion, error) {
	var rows []model.QuizQuestion
	err := r.DB.Where("attempt_id = ?", attemptID).Order("position ASC").Find(&rows).Error
	return rows, err
}

func (r *QuizAttemptRepository) FindQuestionRow(tx *gorm.DB, attemptID, questionID uint) (*model.QuizQuestion, error) {
	var row model.QuizQuestion
	err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *QuizAttemptRepository) ListByUser(userID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64

	if err := r.DB.Model(&model.QuizAttempt{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Where("user_id = ?", userID).
		Order("started_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *QuizAttemptRepository) FindCompletedSince(userID uint, since time.Time) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND status = ? AND completed_at >= ?",
		userID, model.AttemptCompleted, since).
		Order("completed_at ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *QuizAttemptRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND status = ?", userID, model.AttemptCompleted).
		Count(&count).Error
	return count, err
}

// RecentQuestionIDs 回溯窗口内给该用户出过的题目ID（用于组卷去重）
func (r *QuizAttemptRepository) RecentQuestionIDs(userID uint, since time.Time) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.QuizQuestion{}).
		Joins("JOIN quiz_attempts ON quiz_attempts.id = quiz_questions.attempt_id").
		Where("quiz_attempts.user_id = ? AND quiz_attempts.started_at >= ?", userID, since).
		Pluck("quiz_questions.question_id", &ids).Error
	return ids, err
}

// AnswerHistory 用户对每道题的最近一次作答正确性（跨所有测验）
func (r *QuizAttemptRepository) AnswerHistory(userID uint) (map[uint]bool, error) {
	type answerRow struct {
		QuestionID uint
		IsCorrect  bool
	}
	var rows []answerRow
	err := r.DB.Model(&model.QuizQuestion{}).
		Select("quiz_questions.question_id, quiz_questions.is_correct").
		Joins("JOIN quiz_attempts ON quiz_attempts.id = quiz_questions.attempt_id").
		Where("quiz_attempts.user_id = ? AND quiz_questions.is_correct IS NOT NULL", userID).
		Order("quiz_questions.answered_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	history := make(map[uint]bool, len(rows))
	for _, row := range rows {
		history[row.QuestionID] = row.IsCorrect
	}
	return history, nil
}

// TopicAnswerRow 已完成测验中的一条作答记录及其所属主题
type TopicAnswerRow struct {
	TopicID   uint
	AttemptID uint
	IsCorrect bool
}

// TopicAnswerRows 按主题聚合所需的原始作答行，仅含已完成测验中已作答的题目
func (r *QuizAttemptRepository) TopicAnswerRows(userID uint) ([]TopicAnswerRow, error) {
	var rows []TopicAnswerRow
	err := r.DB.Model(&model.QuizQuestion{}).
		Select("questions.topic_id AS topic_id, quiz_questions.attempt_id AS attempt_id, quiz_questions.is_correct AS is_correct").
		Joins("JOIN quiz_attempts ON quiz_attempts.id = quiz_questions.attempt_id").
		Joins("JOIN questions ON questions.id = quiz_questions.question_id").
		Where("quiz_attempts.user_id = ? AND quiz_attempts.status = ? AND quiz_questions.is_correct IS NOT NULL",
			userID, model.AttemptCompleted).
		Scan(&rows).Error
	return rows, err
}

// FindStale 超过最长时限仍未结束的测验（供超时清扫）
func (r *QuizAttemptRepository) FindStale(before time.Time) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("status = ? AND started_at < ?", model.AttemptInProgress, before).
		Find(&attempts).Error
	return attempts, err
}
