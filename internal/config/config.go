package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// QuizConfig 出题引擎的可调参数
type QuizConfig struct {
	MaxTopicsPerQuiz    int `mapstructure:"max_topics_per_quiz"`   // 每日测验主题上限
	QuestionsPerTopic   int `mapstructure:"questions_per_topic"`   // 每个主题的题目数
	ExclusionDays       int `mapstructure:"exclusion_days"`        // 去重回溯窗口（天）
	AnalyticsWindowDays int `mapstructure:"analytics_window_days"` // 平均分统计窗口（天）
	StaleAttemptHours   int `mapstructure:"stale_attempt_hours"`   // 超时未完成判定（小时）
	MinSampleSize       int `mapstructure:"min_sample_size"`       // 推荐所需最小答题数
	MaxRecommendations  int `mapstructure:"max_recommendations"`   // 推荐主题上限
	SnapshotTTLMinutes  int `mapstructure:"snapshot_ttl_minutes"`  // 分析快照缓存时长
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("QUIZ_PREP")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	cfg.Quiz.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults 为未配置的出题参数填充默认值
func (q *QuizConfig) ApplyDefaults() {
	if q.MaxTopicsPerQuiz <= 0 {
		q.MaxTopicsPerQuiz = 10
	}
	if q.QuestionsPerTopic <= 0 {
		q.QuestionsPerTopic = 1
	}
	if q.ExclusionDays <= 0 {
		q.ExclusionDays = 30
	}
	if q.AnalyticsWindowDays <= 0 {
		q.AnalyticsWindowDays = 30
	}
	if q.StaleAttemptHours <= 0 {
		q.StaleAttemptHours = 24
	}
	if q.MinSampleSize <= 0 {
		q.MinSampleSize = 3
	}
	if q.MaxRecommendations <= 0 {
		q.MaxRecommendations = 5
	}
	if q.SnapshotTTLMinutes <= 0 {
		q.SnapshotTTLMinutes = 60
	}
}
