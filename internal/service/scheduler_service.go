package service

import (
	"errors"
	"math/rand"
	"time"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/internal/util"
	"quiz_prep_backend/pkg/logger"
	"quiz_prep_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchedulerService 每用户每天至多生成一份每日测验。幂等性由
// daily_quiz_records 上的 (user_id, quiz_date) 唯一索引保证，
// 与调用方（定时任务、用户打开应用、重试投递）无关。
type SchedulerService struct {
	DailyRepo   *repository.DailyQuizRepository
	AttemptRepo *repository.QuizAttemptRepository
	UserRepo    *repository.UserRepository
	Topics      *TopicService
	Composer    *QuizComposer
	Quiz        *QuizService
	Cfg         *config.QuizConfig
	DB          *gorm.DB
}

func NewSchedulerService(
	dailyRepo *repository.DailyQuizRepository,
	attemptRepo *repository.QuizAttemptRepository,
	userRepo *repository.UserRepository,
	topics *TopicService,
	composer *QuizComposer,
	quiz *QuizService,
	cfg *config.QuizConfig,
	db *gorm.DB,
) *SchedulerService {
	return &SchedulerService{
		DailyRepo:   dailyRepo,
		AttemptRepo: attemptRepo,
		UserRepo:    userRepo,
		Topics:      topics,
		Composer:    composer,
		Quiz:        quiz,
		Cfg:         cfg,
		DB:          db,
	}
}

// EnsureDailyQuiz 返回用户当天（按其时区）的每日测验，不存在则生成。
// 重复调用返回同一份测验。无可用主题的日子写入 skipped 记录并返回
// ErrNoActiveTopics；该日之后订阅了主题再调用时会就地补生成。
func (s *SchedulerService) EnsureDailyQuiz(userID uint, date time.Time) (*model.QuizAttempt, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	dateStr := date.In(user.Location()).Format("2006-01-02")

	rec, err := s.DailyRepo.FindByUserAndDate(userID, dateStr)
	if err == nil {
		return s.resolveExisting(user, rec)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.generate(user, dateStr)
}

// resolveExisting 已有当日记录：直接返回其测验；skipped 记录在主题
// 变化后允许就地补生成。attempt 丢失说明"记录与测验成对创建"的不变量
// 被破坏，必须上报而不是悄悄合并。
func (s *SchedulerService) resolveExisting(user *model.User, rec *model.DailyQuizRecord) (*model.QuizAttempt, error) {
	if rec.AttemptID != nil {
		attempt, err := s.AttemptRepo.FindByID(*rec.AttemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Log.Error("daily quiz record references missing attempt",
					zap.Uint("userId", rec.UserID),
					zap.String("date", rec.QuizDate),
					zap.Uint("attemptId", *rec.AttemptID))
				return nil, util.ErrDailyRecordOrphaned
			}
			return nil, err
		}
		return attempt, nil
	}

	if !rec.Skipped {
		logger.Log.Error("daily quiz record has neither attempt nor skip marker",
			zap.Uint("userId", rec.UserID),
			zap.String("date", rec.QuizDate))
		return nil, util.ErrDailyRecordOrphaned
	}

	// skipped 的日子：主题可能已经变了，重新尝试
	return s.fillSkipped(user, rec)
}

func (s *SchedulerService) generate(user *model.User, dateStr string) (*model.QuizAttempt, error) {
	questionIDs, topicIDs, selectErr := s.selectQuestions(user)
	if selectErr != nil {
		if kindSkippable(selectErr) {
			s.markSkipped(user.ID, dateStr)
		}
		return nil, selectErr
	}

	attempt := buildAttempt(user.ID, model.QuizTypeDaily, topicIDs, len(questionIDs), user.TimerEnabled)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 测验与每日记录必须同生共死：任一失败整体回滚
		if err := s.AttemptRepo.CreateWithQuestions(tx, attempt, questionIDs); err != nil {
			return err
		}
		rec := &model.DailyQuizRecord{
			UserID:    user.ID,
			QuizDate:  dateStr,
			AttemptID: &attempt.ID,
		}
		return s.DailyRepo.CreateTx(tx, rec)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发触发撞上唯一索引：丢弃本次，返回胜者的测验
			rec, ferr := s.DailyRepo.FindByUserAndDate(user.ID, dateStr)
			if ferr != nil {
				return nil, ferr
			}
			return s.resolveExisting(user, rec)
		}
		return nil, err
	}

	monitoring.DailyQuizzesGenerated.Inc()
	logger.Log.Info("daily quiz generated",
		zap.Uint("userId", user.ID),
		zap.String("date", dateStr),
		zap.Int("questions", len(questionIDs)))
	return attempt, nil
}

// errBackfillLost 补生成时条件更新未命中：另一个写入者已绑定测验
var errBackfillLost = errors.New("daily quiz backfill lost to concurrent writer")

// fillSkipped 为之前标记 skipped 的日子补生成测验（复用同一条记录，
// 唯一性约束不变）。UPDATE 不触发唯一索引，用条件更新收敛并发补生成；
// 落败方回滚自己刚建的测验，改用胜者的。
func (s *SchedulerService) fillSkipped(user *model.User, rec *model.DailyQuizRecord) (*model.QuizAttempt, error) {
	questionIDs, topicIDs, err := s.selectQuestions(user)
	if err != nil {
		return nil, err
	}

	attempt := buildAttempt(user.ID, model.QuizTypeDaily, topicIDs, len(questionIDs), user.TimerEnabled)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.AttemptRepo.CreateWithQuestions(tx, attempt, questionIDs); err != nil {
			return err
		}
		claimed, err := s.DailyRepo.ClaimSkippedTx(tx, rec.ID, attempt.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return errBackfillLost
		}
		return nil
	})
	if errors.Is(err, errBackfillLost) {
		winner, ferr := s.DailyRepo.FindByUserAndDate(user.ID, rec.QuizDate)
		if ferr != nil {
			return nil, ferr
		}
		return s.resolveExisting(user, winner)
	}
	if err != nil {
		return nil, err
	}

	monitoring.DailyQuizzesGenerated.Inc()
	return attempt, nil
}

func (s *SchedulerService) selectQuestions(user *model.User) ([]uint, []uint, error) {
	topicIDs, err := s.Topics.SelectQuizTopics(user.ID, s.Cfg.MaxTopicsPerQuiz)
	if err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	questionIDs, err := s.Composer.Compose(user.ID, topicIDs, s.Cfg.QuestionsPerTopic, rng)
	if err != nil {
		return nil, nil, err
	}
	return questionIDs, topicIDs, nil
}

func kindSkippable(err error) bool {
	return errors.Is(err, util.ErrNoActiveTopics) || errors.Is(err, util.ErrInsufficientQuestions)
}

func (s *SchedulerService) markSkipped(userID uint, dateStr string) {
	rec := &model.DailyQuizRecord{
		UserID:   userID,
		QuizDate: dateStr,
		Skipped:  true,
	}
	if err := s.DailyRepo.CreateTx(s.DB, rec); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		logger.Log.Error("failed to mark daily quiz as skipped",
			zap.Uint("userId", userID),
			zap.String("date", dateStr),
			zap.Error(err))
	}
}

// RunDailyGeneration 为所有已到通知时间的用户生成每日测验。
// 由应用内的小时级定时器驱动；与外部 cron 或用户主动打开应用并发
// 调用也只会生成一份。
func (s *SchedulerService) RunDailyGeneration(now time.Time) {
	users, err := s.UserRepo.FindActiveWithNotifications()
	if err != nil {
		logger.Log.Error("daily generation: failed to list users", zap.Error(err))
		return
	}

	generated := 0
	for _, user := range users {
		if !notificationDue(now.In(user.Location()), user.NotificationTime) {
			continue
		}
		if _, err := s.EnsureDailyQuiz(user.ID, now); err != nil {
			if kindSkippable(err) {
				continue
			}
			logger.Log.Error("daily generation failed for user",
				zap.Uint("userId", user.ID),
				zap.Error(err))
			continue
		}
		generated++
	}

	if generated > 0 {
		logger.Log.Info("daily generation pass finished", zap.Int("generated", generated))
	}
}

// notificationDue 本地时间是否已过用户配置的通知时间（HH:MM）
func notificationDue(localNow time.Time, notifyAt string) bool {
	t, err := time.Parse("15:04", notifyAt)
	if err != nil {
		t, _ = time.Parse("15:04", "09:00")
	}
	nowMinutes := localNow.Hour()*60 + localNow.Minute()
	dueMinutes := t.Hour()*60 + t.Minute()
	return nowMinutes >= dueMinutes
}

// SweepStaleAttempts 放弃超过最长时限仍未结束的测验
func (s *SchedulerService) SweepStaleAttempts(now time.Time) {
	cutoff := now.Add(-time.Duration(s.Cfg.StaleAttemptHours) * time.Hour)
	stale, err := s.AttemptRepo.FindStale(cutoff)
	if err != nil {
		logger.Log.Error("stale sweep: failed to list attempts", zap.Error(err))
		return
	}

	for _, attempt := range stale {
		if _, err := s.Quiz.Abandon(0, attempt.ID, "timeout"); err != nil {
			logger.Log.Error("stale sweep: abandon failed",
				zap.Uint("attemptId", attempt.ID),
				zap.Error(err))
		}
	}

	if len(stale) > 0 {
		logger.Log.Info("stale attempts swept", zap.Int("count", len(stale)))
	}
}
