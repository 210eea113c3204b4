package repository

import (
	"quiz_prep_backend/internal/model"

	"gorm.io/gorm"
)

type DailyQuizRepository struct {
	DB *gorm.DB
}

func NewDailyQuizRepository(db *gorm.DB) *DailyQuizRepository {
	return &DailyQuizRepository{DB: db}
}

func (r *DailyQuizRepository) FindByUserAndDate(userID uint, date string) (*model.DailyQuizRecord, error) {
	var rec model.DailyQuizRecord
	err := r.DB.Where("user_id = ? AND quiz_date = ?", userID, date).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateTx 在事务内写入每日记录。(user_id, quiz_date) 唯一索引冲突时
// 返回 gorm.ErrDuplicatedKey，由调度器改走已有记录。
func (r *DailyQuizRepository) CreateTx(tx *gorm.DB, rec *model.DailyQuizRecord) error {
	return tx.Create(rec).Error
}

// ClaimSkippedTx 把跳过标记的记录原子地绑定到新测验。条件更新保证
// 并发补生成时只有一个写入者生效；返回 false 表示别的写入者已抢先。
func (r *DailyQuizRepository) ClaimSkippedTx(tx *gorm.DB, recID, attemptID uint) (bool, error) {
	res := tx.Model(&model.DailyQuizRecord{}).
		Where("id = ? AND attempt_id IS NULL AND skipped = ?", recID, true).
		Updates(map[string]interface{}{"attempt_id": attemptID, "skipped": false})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CompletedDates 已完成每日测验的日期（YYYY-MM-DD），升序。连续打卡与周视图的数据源。
func (r *DailyQuizRepository) CompletedDates(userID uint, sinceDate string) ([]string, error) {
	var dates []string
	err := r.DB.Model(&model.DailyQuizRecord{}).
		Joins("JOIN quiz_attempts ON quiz_attempts.id = daily_quiz_records.attempt_id").
		Where("daily_quiz_records.user_id = ? AND daily_quiz_records.quiz_date >= ? AND quiz_attempts.status = ?",
			userID, sinceDate, model.AttemptCompleted).
		Order("daily_quiz_records.quiz_date ASC").
		Pluck("daily_quiz_records.quiz_date", &dates).Error
	return dates, err
}
