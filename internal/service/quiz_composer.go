package service

import (
	"math/rand"
	"sort"
	"time"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/internal/util"
	"quiz_prep_backend/pkg/logger"
	"quiz_prep_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// QuizComposer 按主题顺序挑选题目。优先出没做过的题，其次做错过的，
// 最后才是做对过的；同档内由传入的随机源决定（测试可固定种子）。
type QuizComposer struct {
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.QuizAttemptRepository
	Cfg          *config.QuizConfig
}

func NewQuizComposer(questionRepo *repository.QuestionRepository, attemptRepo *repository.QuizAttemptRepository, cfg *config.QuizConfig) *QuizComposer {
	return &QuizComposer{
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		Cfg:          cfg,
	}
}

// poolFetchLimit 每个主题取候选题的上限，留出分档挑选的余量
const poolFetchLimit = 50

// Compose 为给定主题序列挑选题目。某主题排除近期出过的题后无题可选时，
// 只对该主题放宽回溯窗口；仍无题则跳过该主题并记录，不让整卷失败。
// 全部主题都无题时返回 ErrInsufficientQuestions。
func (c *QuizComposer) Compose(userID uint, topicIDs []uint, countPerTopic int, rng *rand.Rand) ([]uint, error) {
	if countPerTopic <= 0 {
		countPerTopic = 1
	}

	since := time.Now().AddDate(0, 0, -c.Cfg.ExclusionDays)
	excludeIDs, err := c.AttemptRepo.RecentQuestionIDs(userID, since)
	if err != nil {
		return nil, err
	}

	history, err := c.AttemptRepo.AnswerHistory(userID)
	if err != nil {
		return nil, err
	}

	var selected []uint
	for _, topicID := range topicIDs {
		pool, err := c.QuestionRepo.FindEligible(topicID, excludeIDs, poolFetchLimit)
		if err != nil {
			return nil, err
		}

		if len(pool) == 0 {
			// 降级：放宽该主题的去重窗口
			monitoring.ComposerDegradations.Inc()
			logger.Log.Warn("exclusion window relaxed for topic",
				zap.Uint("userId", userID),
				zap.Uint("topicId", topicID))

			pool, err = c.QuestionRepo.FindEligible(topicID, nil, poolFetchLimit)
			if err != nil {
				return nil, err
			}
		}

		if len(pool) == 0 {
			monitoring.ComposerDegradations.Inc()
			logger.Log.Warn("topic skipped, no eligible questions",
				zap.Uint("userId", userID),
				zap.Uint("topicId", topicID))
			continue
		}

		selected = append(selected, pickByFreshness(pool, history, countPerTopic, rng)...)
	}

	if len(selected) == 0 {
		return nil, util.ErrInsufficientQuestions
	}
	return selected, nil
}

// pickByFreshness 分档挑题：未见过 > 答错过 > 答对过，档内随机。
// history 记录用户对某题最近一次作答是否正确，未作答的题不在其中。
func pickByFreshness(pool []model.Question, history map[uint]bool, count int, rng *rand.Rand) []uint {
	var unseen, missed, mastered []uint
	for _, q := range pool {
		correct, seen := history[q.ID]
		switch {
		case !seen:
			unseen = append(unseen, q.ID)
		case !correct:
			missed = append(missed, q.ID)
		default:
			mastered = append(mastered, q.ID)
		}
	}

	picked := make([]uint, 0, count)
	for _, tier := range [][]uint{unseen, missed, mastered} {
		if len(picked) >= count {
			break
		}
		shuffleIDs(tier, rng)
		for _, id := range tier {
			if len(picked) >= count {
				break
			}
			picked = append(picked, id)
		}
	}
	return picked
}

func shuffleIDs(ids []uint, rng *rand.Rand) {
	// 先排序再洗牌，结果只取决于种子，与数据库返回顺序无关
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
