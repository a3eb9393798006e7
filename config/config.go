package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Webex     WebexConfig
	Survey    SurveyConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AWS       AWSConfig
	Scheduler SchedulerConfig
	LogLevel  string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string
	ReadTimeout   int
	WriteTimeout  int
	PublicBaseURL string // externally reachable root used as webhook target, e.g. https://bot.example.com/
	RunWorker     bool   // also process queued jobs inside the server
}

// WebexConfig holds chat platform API settings.
type WebexConfig struct {
	AccessToken   string
	BaseURL       string
	WebhookSecret string  // HMAC secret set on subscriptions; empty disables signature checks
	RateLimit     float64 // requests per second, 0 = unlimited
	RateBurst     int
	TimeoutSec    int
}

// SurveyConfig holds roster, card and digest settings.
type SurveyConfig struct {
	OrganizationsFile string
	DefinitionFile    string
	NormalAnswer      string // answer value meaning "no issue"
	SubstituteURL     string // delegate submission link appended to list/check replies
	Timezone          string
	ResolverWorkers   int
}

// StoreConfig selects the live response store backend.
type StoreConfig struct {
	Backend  string // redis | postgres | memory
	RedisKey string // hash key when Backend is redis
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds operator token signing settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the archive bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ArchiveBucket   string
	ArchivePrefix   string
}

// SchedulerConfig holds scheduled trigger settings.
type SchedulerConfig struct {
	Source       string // sentinel "source" value of scheduled events
	RotationLock time.Duration
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Location returns the configured time zone, falling back to time.Local.
func (c SurveyConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SubmissionTargetURL is where attachment action webhooks are delivered.
func (c ServerConfig) SubmissionTargetURL() string {
	return joinURL(c.PublicBaseURL, "webhooks/survey")
}

// MessageTargetURL is where direct message webhooks are delivered.
func (c ServerConfig) MessageTargetURL() string {
	return joinURL(c.PublicBaseURL, "webhooks/check")
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			ReadTimeout:   getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:  getEnvInt("WRITE_TIMEOUT_SEC", 60),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
			RunWorker:     getEnvBool("RUN_WORKER", false),
		},
		Webex: WebexConfig{
			AccessToken:   getEnv("WEBEX_ACCESS_TOKEN", ""),
			BaseURL:       getEnv("WEBEX_BASE_URL", "https://webexapis.com/v1/"),
			WebhookSecret: getEnv("WEBEX_WEBHOOK_SECRET", ""),
			RateLimit:     getEnvFloat("WEBEX_RATE_LIMIT", 5),
			RateBurst:     getEnvInt("WEBEX_RATE_BURST", 10),
			TimeoutSec:    getEnvInt("WEBEX_TIMEOUT_SEC", 30),
		},
		Survey: SurveyConfig{
			OrganizationsFile: getEnv("ORGANIZATIONS_FILE", "organizations.yaml"),
			DefinitionFile:    getEnv("SURVEY_FILE", "survey.yaml"),
			NormalAnswer:      getEnv("SURVEY_NORMAL_ANSWER", "false"),
			SubstituteURL:     getEnv("SURVEY_SUBSTITUTE_URL", ""),
			Timezone:          getEnv("TIMEZONE", "Local"),
			ResolverWorkers:   getEnvInt("NAME_RESOLVER_WORKERS", 10),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", "redis")),
			RedisKey: getEnv("STORE_REDIS_KEY", "survey_responses"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "survey"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ArchiveBucket:   getEnv("AWS_S3_ARCHIVE_BUCKET", "survey-archive"),
			ArchivePrefix:   getEnv("AWS_S3_ARCHIVE_PREFIX", ""),
		},
		Scheduler: SchedulerConfig{
			Source:       getEnv("SCHEDULE_SOURCE", "aws.events"),
			RotationLock: time.Duration(getEnvInt("ROTATION_LOCK_SEC", 300)) * time.Second,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Webex.AccessToken == "" {
		return nil, fmt.Errorf("WEBEX_ACCESS_TOKEN is required")
	}
	switch cfg.Store.Backend {
	case "redis", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	return cfg, nil
}

func joinURL(base, path string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + path
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
