package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Resume Storage Configuration
	ResumeStoragePath   string `mapstructure:"RESUME_STORAGE_PATH"`
	ResumePublicBaseURL string `mapstructure:"RESUME_PUBLIC_BASE_URL"`
	MaxResumeSizeMB     int64  `mapstructure:"MAX_RESUME_SIZE_MB"`

	// Identity Provider Webhooks
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`

	// Application Status Flow
	// Raw form: "applied>shortlisted,applied>rejected". Parsed into
	// StatusTransitions at load time.
	ApplicationStatusFlow string `mapstructure:"APPLICATION_STATUS_FLOW"`
	StatusTransitions     map[string][]string

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Elasticsearch Configuration
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "hireboard_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("RESUME_STORAGE_PATH", "./resumes")
	v.SetDefault("RESUME_PUBLIC_BASE_URL", "/resumes")
	v.SetDefault("MAX_RESUME_SIZE_MB", 10)

	v.SetDefault("WEBHOOK_SECRET", "")

	v.SetDefault("APPLICATION_STATUS_FLOW", "applied>shortlisted,applied>rejected")

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	// Elasticsearch. Empty disables the search index and falls back to SQL.
	v.SetDefault("ELASTICSEARCH_URL", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute

	transitions, err := ParseStatusFlow(cfg.ApplicationStatusFlow)
	if err != nil {
		return nil, fmt.Errorf("invalid APPLICATION_STATUS_FLOW: %w", err)
	}
	cfg.StatusTransitions = transitions

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath) == "" {
		return nil, fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(cfg.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", cfg.FirebaseServiceAccountKeyPath)
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("FATAL: WEBHOOK_SECRET is not set. This is required to authenticate identity provider webhooks")
	}

	return &cfg, nil
}

// DSN builds the GORM postgres connection string from the individual DB params.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}

// ParseStatusFlow parses a comma-separated list of "from>to" pairs into a
// transition map. Transitions are one-directional; anything not listed is
// rejected by the application service.
func ParseStatusFlow(flow string) (map[string][]string, error) {
	transitions := make(map[string][]string)
	for _, pair := range strings.Split(flow, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ">")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed transition %q, expected \"from>to\"", pair)
		}
		from := strings.TrimSpace(parts[0])
		to := strings.TrimSpace(parts[1])
		if from == "" || to == "" {
			return nil, fmt.Errorf("malformed transition %q, empty state name", pair)
		}
		transitions[from] = append(transitions[from], to)
	}
	if len(transitions) == 0 {
		return nil, fmt.Errorf("no transitions defined in %q", flow)
	}
	return transitions, nil
}

// TransitionAllowed reports whether the configured flow permits moving an
// application from one status to another.
func (c *Config) TransitionAllowed(from, to string) bool {
	for _, allowed := range c.StatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
