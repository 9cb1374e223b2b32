package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Review store backends selectable via REVIEW_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Review        ReviewConfig
	Analysis      AnalysisConfig
	Notifications NotificationConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ReviewConfig tunes the HITL escalation rules and the review store.
type ReviewConfig struct {
	Store        string
	StoreTimeout time.Duration

	HighRiskScore      float64
	VeryHighRiskScore  float64
	LargeAmount        string
	VeryLargeAmount    string
	LowConfidence      float64
	VeryLowConfidence  float64
	SuspiciousKeywords []string
	UnusualLocations   []string
	UnusualHourStart   int
	UnusualHourEnd     int
}

// AnalysisConfig governs the transaction analyzer boundary.
type AnalysisConfig struct {
	Provider string
	Timeout  time.Duration
}

// NotificationConfig configures reviewer notification dispatch.
type NotificationConfig struct {
	Enabled      bool
	SlackToken   string
	SlackChannel string
	SlackAPIURL  string
	Workers      int
	MaxRetries   int
	RetryDelay   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Review = ReviewConfig{
		Store:              v.GetString("REVIEW_STORE"),
		StoreTimeout:       parseDuration(v.GetString("REVIEW_STORE_TIMEOUT"), 2*time.Second),
		HighRiskScore:      v.GetFloat64("REVIEW_HIGH_RISK_SCORE"),
		VeryHighRiskScore:  v.GetFloat64("REVIEW_VERY_HIGH_RISK_SCORE"),
		LargeAmount:        v.GetString("REVIEW_LARGE_AMOUNT"),
		VeryLargeAmount:    v.GetString("REVIEW_VERY_LARGE_AMOUNT"),
		LowConfidence:      v.GetFloat64("REVIEW_LOW_CONFIDENCE"),
		VeryLowConfidence:  v.GetFloat64("REVIEW_VERY_LOW_CONFIDENCE"),
		SuspiciousKeywords: splitAndTrim(v.GetString("REVIEW_SUSPICIOUS_KEYWORDS")),
		UnusualLocations:   splitAndTrim(v.GetString("REVIEW_UNUSUAL_LOCATIONS")),
		UnusualHourStart:   v.GetInt("REVIEW_UNUSUAL_HOUR_START"),
		UnusualHourEnd:     v.GetInt("REVIEW_UNUSUAL_HOUR_END"),
	}

	cfg.Analysis = AnalysisConfig{
		Provider: v.GetString("ANALYSIS_PROVIDER"),
		Timeout:  parseDuration(v.GetString("ANALYSIS_TIMEOUT"), 10*time.Second),
	}

	cfg.Notifications = NotificationConfig{
		Enabled:      v.GetBool("NOTIFICATIONS_ENABLED"),
		SlackToken:   v.GetString("SLACK_BOT_TOKEN"),
		SlackChannel: v.GetString("SLACK_REVIEW_CHANNEL"),
		SlackAPIURL:  v.GetString("SLACK_API_URL"),
		Workers:      v.GetInt("NOTIFICATION_WORKERS"),
		MaxRetries:   v.GetInt("NOTIFICATION_MAX_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("NOTIFICATION_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "fraudlens")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "fraudlens")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REVIEW_STORE", StoreMemory)
	v.SetDefault("REVIEW_STORE_TIMEOUT", "2s")
	v.SetDefault("REVIEW_HIGH_RISK_SCORE", 70)
	v.SetDefault("REVIEW_VERY_HIGH_RISK_SCORE", 90)
	v.SetDefault("REVIEW_LARGE_AMOUNT", "5000")
	v.SetDefault("REVIEW_VERY_LARGE_AMOUNT", "10000")
	v.SetDefault("REVIEW_LOW_CONFIDENCE", 0.7)
	v.SetDefault("REVIEW_VERY_LOW_CONFIDENCE", 0.5)
	v.SetDefault("REVIEW_SUSPICIOUS_KEYWORDS", "casino,gambling,offshore,highrisk")
	v.SetDefault("REVIEW_UNUSUAL_LOCATIONS", "offshore,high risk,sanctioned")
	v.SetDefault("REVIEW_UNUSUAL_HOUR_START", 1)
	v.SetDefault("REVIEW_UNUSUAL_HOUR_END", 5)

	v.SetDefault("ANALYSIS_PROVIDER", "offline")
	v.SetDefault("ANALYSIS_TIMEOUT", "10s")

	v.SetDefault("NOTIFICATIONS_ENABLED", true)
	v.SetDefault("SLACK_BOT_TOKEN", "")
	v.SetDefault("SLACK_REVIEW_CHANNEL", "#fraud-reviews")
	v.SetDefault("SLACK_API_URL", "")
	v.SetDefault("NOTIFICATION_WORKERS", 1)
	v.SetDefault("NOTIFICATION_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATION_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
