package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// AnalyticsService 从已完成的测验历史重算分析快照。快照是纯推导结果，
// 每次整体重算而不是增量修补，并发触发不会产生撕裂的中间态。
// Redis 只是读穿缓存，完成测验时失效。
type AnalyticsService struct {
	AttemptRepo *repository.QuizAttemptRepository
	DailyRepo   *repository.DailyQuizRepository
	TopicRepo   *repository.TopicRepository
	UserRepo    *repository.UserRepository
	Redis       *redis.Client
	Cfg         *config.QuizConfig
}

func NewAnalyticsService(
	attemptRepo *repository.QuizAttemptRepository,
	dailyRepo *repository.DailyQuizRepository,
	topicRepo *repository.TopicRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	cfg *config.QuizConfig,
) *AnalyticsService {
	return &AnalyticsService{
		AttemptRepo: attemptRepo,
		DailyRepo:   dailyRepo,
		TopicRepo:   topicRepo,
		UserRepo:    userRepo,
		Redis:       rdb,
		Cfg:         cfg,
	}
}

func (s *AnalyticsService) cacheKey(userID uint, dateStr string) string {
	return fmt.Sprintf("analytics:%d:%s", userID, dateStr)
}

// Compute 计算（或从缓存读出）用户截至 asOf 时刻的分析快照。
// 空历史返回零值快照。
func (s *AnalyticsService) Compute(userID uint, asOf time.Time) (*model.AnalyticsSnapshot, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return s.computeAt(user, asOf.In(user.Location()))
}

// ComputeForDate 按用户时区解释给定的日历日（YYYY-MM-DD）。
// 日期串直接落在用户时区里解析，不经过 UTC 中转，西半球用户请求的
// 日历日不会前移一天。
func (s *AnalyticsService) ComputeForDate(userID uint, dateStr string) (*model.AnalyticsSnapshot, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	localAsOf, err := parseLocalDate(dateStr, user.Location())
	if err != nil {
		return nil, err
	}
	return s.computeAt(user, localAsOf)
}

func parseLocalDate(dateStr string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, dateStr, loc)
}

func (s *AnalyticsService) computeAt(user *model.User, localAsOf time.Time) (*model.AnalyticsSnapshot, error) {
	dateStr := localAsOf.Format(dateLayout)

	ctx := context.Background()
	key := s.cacheKey(user.ID, dateStr)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var snapshot model.AnalyticsSnapshot
			if json.Unmarshal([]byte(cached), &snapshot) == nil {
				return &snapshot, nil
			}
		}
	}

	snapshot, err := s.recompute(user.ID, localAsOf)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		data, _ := json.Marshal(snapshot)
		ttl := time.Duration(s.Cfg.SnapshotTTLMinutes) * time.Minute
		if err := s.Redis.Set(ctx, key, data, ttl).Err(); err != nil {
			// 缓存不持有事实，写失败只记日志
			logger.Log.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return snapshot, nil
}

func (s *AnalyticsService) recompute(userID uint, localAsOf time.Time) (*model.AnalyticsSnapshot, error) {
	totalCompleted, err := s.AttemptRepo.CountCompleted(userID)
	if err != nil {
		return nil, err
	}

	windowStart := localAsOf.AddDate(0, 0, -s.Cfg.AnalyticsWindowDays)
	windowed, err := s.AttemptRepo.FindCompletedSince(userID, windowStart)
	if err != nil {
		return nil, err
	}

	// 连续打卡最多回看一年
	sinceStr := localAsOf.AddDate(-1, 0, 0).Format(dateLayout)
	completedDates, err := s.DailyRepo.CompletedDates(userID, sinceStr)
	if err != nil {
		return nil, err
	}

	rows, err := s.AttemptRepo.TopicAnswerRows(userID)
	if err != nil {
		return nil, err
	}
	topicIDs := make([]uint, 0)
	seen := make(map[uint]bool)
	for _, row := range rows {
		if !seen[row.TopicID] {
			topicIDs = append(topicIDs, row.TopicID)
			seen[row.TopicID] = true
		}
	}
	names, err := s.TopicRepo.NamesByIDs(topicIDs)
	if err != nil {
		return nil, err
	}

	asOfDate := localAsOf.Format(dateLayout)
	return &model.AnalyticsSnapshot{
		Streak:           computeStreak(completedDates, asOfDate),
		TotalQuizzes:     int(totalCompleted),
		AverageScore:     averageScore(windowed),
		WeeklyProgress:   weeklyProgress(completedDates, asOfDate),
		TopicPerformance: aggregateTopicPerformance(rows, names),
	}, nil
}

// Invalidate 删除用户当天的快照缓存
func (s *AnalyticsService) Invalidate(userID uint) {
	if s.Redis == nil {
		return
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return
	}
	dateStr := time.Now().In(user.Location()).Format(dateLayout)
	if err := s.Redis.Del(context.Background(), s.cacheKey(userID, dateStr)).Err(); err != nil {
		logger.Log.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

// OnAttemptCompleted 完成测验后同步重算快照
func (s *AnalyticsService) OnAttemptCompleted(userID uint) {
	s.Invalidate(userID)
	if _, err := s.Compute(userID, time.Now()); err != nil {
		logger.Log.Error("analytics recompute failed",
			zap.Uint("userId", userID),
			zap.Error(err))
	}
}

// computeStreak 连续打卡天数。锚点是最近一个完成日：当天没完成不清空
// 昨天为止的连续记录，但最近完成日早于昨天则记 0。
func computeStreak(completedDates []string, asOfDate string) int {
	if len(completedDates) == 0 {
		return 0
	}

	set := make(map[string]bool, len(completedDates))
	for _, d := range completedDates {
		set[d] = true
	}

	asOf, err := time.Parse(dateLayout, asOfDate)
	if err != nil {
		return 0
	}

	anchor := asOf
	if !set[anchor.Format(dateLayout)] {
		anchor = asOf.AddDate(0, 0, -1)
		if !set[anchor.Format(dateLayout)] {
			return 0
		}
	}

	streak := 0
	for day := anchor; set[day.Format(dateLayout)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// averageScore 窗口内已完成测验的平均得分，空集返回 0
func averageScore(completed []model.QuizAttempt) float64 {
	if len(completed) == 0 {
		return 0
	}
	var sum float64
	for _, a := range completed {
		sum += a.ScorePercentage
	}
	return sum / float64(len(completed))
}

// weeklyProgress 最近7个自然日（含 asOf 当天）每天是否完成了每日测验，旧到新
func weeklyProgress(completedDates []string, asOfDate string) []model.DayProgress {
	set := make(map[string]bool, len(completedDates))
	for _, d := range completedDates {
		set[d] = true
	}

	asOf, err := time.Parse(dateLayout, asOfDate)
	if err != nil {
		return nil
	}

	week := make([]model.DayProgress, 0, 7)
	for i := 6; i >= 0; i-- {
		day := asOf.AddDate(0, 0, -i).Format(dateLayout)
		week = append(week, model.DayProgress{
			Date:      day,
			Completed: set[day],
		})
	}
	return week
}

// aggregateTopicPerformance 按主题聚合已完成测验中的作答正确率
func aggregateTopicPerformance(rows []repository.TopicAnswerRow, names map[uint]string) []model.TopicPerformance {
	type agg struct {
		answered int
		correct  int
		attempts map[uint]bool
	}
	byTopic := make(map[uint]*agg)
	for _, row := range rows {
		a, ok := byTopic[row.TopicID]
		if !ok {
			a = &agg{attempts: make(map[uint]bool)}
			byTopic[row.TopicID] = a
		}
		a.answered++
		if row.IsCorrect {
			a.correct++
		}
		a.attempts[row.AttemptID] = true
	}

	result := make([]model.TopicPerformance, 0, len(byTopic))
	for topicID, a := range byTopic {
		perf := model.TopicPerformance{
			TopicID:       topicID,
			TopicName:     names[topicID],
			Answered:      a.answered,
			Correct:       a.correct,
			AttemptsCount: len(a.attempts),
		}
		if a.answered > 0 {
			perf.MeanCorrect = float64(a.correct) / float64(a.answered)
		}
		result = append(result, perf)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].TopicID < result[j].TopicID })
	return result
}
