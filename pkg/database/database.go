package database

import (
	"fmt"
	"log"

	"quiz_prep_backend/internal/config"
	"quiz_prep_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	// TranslateError: 唯一索引冲突要能以 gorm.ErrDuplicatedKey 形式被调度器识别
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Topic{},
		&model.UserTopic{},
		&model.Question{},
		&model.QuizAttempt{},
		&model.QuizQuestion{},
		&model.DailyQuizRecord{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 预置默认主题（用户订阅不足时的补足来源）
	var count int64
	db.Model(&model.Topic{}).Count(&count)
	if count == 0 {
		defaultTopics := []model.Topic{
			{Name: "Data Structures", Category: "technical", DifficultyLevel: "medium", IsDefault: true, Description: "Arrays, linked lists, trees, graphs"},
			{Name: "Algorithms", Category: "technical", DifficultyLevel: "medium", IsDefault: true, Description: "Sorting, searching, dynamic programming"},
			{Name: "Quantitative Aptitude", Category: "aptitude", DifficultyLevel: "easy", IsDefault: true, Description: "Percentages, ratios, time and work"},
			{Name: "Logical Reasoning", Category: "aptitude", DifficultyLevel: "easy", IsDefault: true, Description: "Series, puzzles, syllogisms"},
			{Name: "HR Interview", Category: "hr", DifficultyLevel: "easy", IsDefault: true, Description: "Behavioural and situational questions"},
			{Name: "System Design", Category: "technical", DifficultyLevel: "hard", IsDefault: true, Description: "Scalability, caching, databases"},
		}
		for _, t := range defaultTopics {
			db.Create(&t)
		}
	}

	return db, nil
}
