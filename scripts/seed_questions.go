// 题库种子脚本
//
// 往默认主题里灌入一批已验证的示例题目，供本地开发和演示使用。
// 正式环境的题目由抓取/AI 流水线写入，不要在线上跑这个脚本。
//
// 用法: go run scripts/seed_questions.go

package main

import (
	"log"
	"os"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/pkg/database"
	"quiz_prep_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

type seedQuestion struct {
	Topic         string
	Text          string
	Type          string
	Options       string
	CorrectAnswer string
	Explanation   string
}

var seedQuestions = []seedQuestion{
	{
		Topic:         "Data Structures",
		Text:          "What is the average time complexity of lookup in a hash table?",
		Type:          model.QuestionTypeMCQ,
		Options:       `["O(1)", "O(log n)", "O(n)", "O(n log n)"]`,
		CorrectAnswer: "O(1)",
		Explanation:   "哈希表均摊查找为常数时间，最坏退化到 O(n)。",
	},
	{
		Topic:         "Data Structures",
		Text:          "Which data structures can implement a FIFO queue? (select all that apply)",
		Type:          model.QuestionTypeMultiSelect,
		Options:       `["Linked list", "Two stacks", "Binary heap", "Circular buffer"]`,
		CorrectAnswer: "Linked list,Two stacks,Circular buffer",
		Explanation:   "堆按优先级出队，不保序。",
	},
	{
		Topic:         "Algorithms",
		Text:          "What is the worst-case time complexity of quicksort?",
		Type:          model.QuestionTypeMCQ,
		Options:       `["O(n)", "O(n log n)", "O(n^2)", "O(2^n)"]`,
		CorrectAnswer: "O(n^2)",
		Explanation:   "基准选择最差时每次只缩小一个元素。",
	},
	{
		Topic:         "Algorithms",
		Text:          "Name the technique that stores results of overlapping subproblems to avoid recomputation.",
		Type:          model.QuestionTypeText,
		CorrectAnswer: "dynamic programming",
	},
	{
		Topic:         "Quantitative Aptitude",
		Text:          "A train travels 120 km in 2 hours. What is its average speed in km/h?",
		Type:          model.QuestionTypeMCQ,
		Options:       `["40", "50", "60", "80"]`,
		CorrectAnswer: "60",
	},
	{
		Topic:         "Logical Reasoning",
		Text:          "If all Bloops are Razzies and all Razzies are Lazzies, are all Bloops definitely Lazzies?",
		Type:          model.QuestionTypeMCQ,
		Options:       `["Yes", "No", "Cannot be determined"]`,
		CorrectAnswer: "Yes",
	},
	{
		Topic:         "HR Interview",
		Text:          "Which of these is the recommended structure for answering behavioral questions?",
		Type:          model.QuestionTypeMCQ,
		Options:       `["STAR", "SOLID", "CRUD", "ACID"]`,
		CorrectAnswer: "STAR",
		Explanation:   "Situation, Task, Action, Result。",
	},
	{
		Topic:         "System Design",
		Text:          "Which strategies help scale database reads? (select all that apply)",
		Type:          model.QuestionTypeMultiSelect,
		Options:       `["Read replicas", "Caching", "Synchronous replication to one node", "CDN for static assets"]`,
		CorrectAnswer: "Read replicas,Caching",
	},
	{
		Topic:         "System Design",
		Text:          "What does the CAP theorem state a distributed system must choose between during a network partition?",
		Type:          model.QuestionTypeMCQ,
		Options:       `["Consistency and availability", "Latency and throughput", "Durability and isolation"]`,
		CorrectAnswer: "Consistency and availability",
	},
}

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(db)

	topicIDs := make(map[string]uint)
	var topics []model.Topic
	if err := db.Find(&topics).Error; err != nil {
		log.Fatalf("读取主题失败: %v", err)
	}
	for _, t := range topics {
		topicIDs[t.Name] = t.ID
	}

	seeded := 0
	for _, sq := range seedQuestions {
		topicID, ok := topicIDs[sq.Topic]
		if !ok {
			log.Printf("跳过：主题不存在 %q", sq.Topic)
			continue
		}

		var count int64
		db.Model(&model.Question{}).
			Where("topic_id = ? AND question_text = ?", topicID, sq.Text).
			Count(&count)
		if count > 0 {
			continue
		}

		options := sq.Options
		if options == "" {
			options = "[]" // JSON 列不接受空字符串
		}

		q := model.Question{
			TopicID:       topicID,
			QuestionText:  sq.Text,
			QuestionType:  sq.Type,
			Options:       options,
			CorrectAnswer: sq.CorrectAnswer,
			AIExplanation: sq.Explanation,
			SourceName:    "seed",
			IsVerified:    true,
		}
		if err := questionRepo.Create(&q); err != nil {
			log.Fatalf("写入题目失败: %v", err)
		}
		seeded++
	}

	log.Printf("完成！新增 %d 道题目", seeded)
}
