package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL     string
	RequestTimeout time.Duration

	ConversationPollInterval time.Duration
	MessagePollInterval      time.Duration
	AutomationPollInterval   time.Duration
	AutomationSuppressWindow time.Duration
	SearchDebounce           time.Duration

	Port     string
	Env      string
	LogLevel string

	DatabaseURL string

	ReportSchedule string
	ReportFormat   string
	ReportStorage  string
	ReportDir      string

	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3Bucket           string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only
func FromEnv() *Config {
	cfg := &Config{
		BackendURL:     os.Getenv("BACKEND_URL"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),

		ConversationPollInterval: getDuration("CONVERSATION_POLL_INTERVAL", 5*time.Second),
		MessagePollInterval:      getDuration("MESSAGE_POLL_INTERVAL", 3*time.Second),
		AutomationPollInterval:   getDuration("AUTOMATION_POLL_INTERVAL", 5*time.Second),
		AutomationSuppressWindow: getDuration("AUTOMATION_SUPPRESS_WINDOW", 2*time.Second),
		SearchDebounce:           getDuration("SEARCH_DEBOUNCE", 500*time.Millisecond),

		Port:     os.Getenv("PORT"),
		Env:      os.Getenv("ENV"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		ReportSchedule: os.Getenv("REPORT_SCHEDULE"),
		ReportFormat:   os.Getenv("REPORT_FORMAT"),
		ReportStorage:  os.Getenv("REPORT_STORAGE"),
		ReportDir:      os.Getenv("REPORT_DIR"),

		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
	}

	// Default values
	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://localhost:3000"
	}
	cfg.BackendURL = strings.TrimSuffix(cfg.BackendURL, "/")
	if cfg.Port == "" {
		cfg.Port = "8081"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "console.db"
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = "csv"
	}
	if cfg.ReportStorage == "" {
		cfg.ReportStorage = "local"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "./reports"
	}
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = "us-east-1"
	}

	return cfg
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getDuration accepts Go duration syntax ("5s", "500ms") or bare milliseconds
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	log.Printf("⚠️ Invalid %s=%q, using default %s", key, raw, fallback)
	return fallback
}
