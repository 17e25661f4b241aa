package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseType   string `yaml:"database_type"` // sqlite, postgres or mysql
	DatabasePath   string `yaml:"database_path"`
	DatabaseURL    string `yaml:"database_url"`
	MigrationsPath string `yaml:"migrations_path"`

	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
	Debug     bool   `yaml:"debug"`

	// Timezone decides which calendar day "today" is
	Timezone string `yaml:"timezone"`

	AWSRegion      string `yaml:"aws_region"`
	SESFromEmail   string `yaml:"ses_from_email"`
	SESFromName    string `yaml:"ses_from_name"`
	SESSendRate    int    `yaml:"ses_send_rate"`   // messages per second
	NoticeSchedule string `yaml:"notice_schedule"` // cron spec for monthly fee statements
}

// Load reads configuration from defaults, an optional YAML file
// (CONFIG_PATH, default ./config.yaml), a .env file and environment variables,
// later sources overriding earlier ones.
func Load() (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseType:   "sqlite",
		DatabasePath:   "./preschoolfees.db",
		MigrationsPath: "",
		LogLevel:       "info",
		LogPretty:      true,
		Timezone:       "Europe/Stockholm",
		AWSRegion:      "eu-north-1",
		SESFromName:    "Förskolan",
		SESSendRate:    14,
		NoticeSchedule: "0 6 1 * *",
	}

	if err := loadFile(cfg, getEnv("CONFIG_PATH", "./config.yaml")); err != nil {
		return nil, err
	}

	cfg.DatabaseType = getEnv("DB_TYPE", cfg.DatabaseType)
	cfg.DatabasePath = getEnv("DB_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", cfg.MigrationsPath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogPretty = getEnvBool("LOG_PRETTY", cfg.LogPretty)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.SESFromEmail = getEnv("SES_FROM_EMAIL", cfg.SESFromEmail)
	cfg.SESFromName = getEnv("SES_FROM_NAME", cfg.SESFromName)
	cfg.SESSendRate = getEnvInt("SES_SEND_RATE", cfg.SESSendRate)
	cfg.NoticeSchedule = getEnv("NOTICE_SCHEDULE", cfg.NoticeSchedule)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for database type %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.SESSendRate < 1 {
		return fmt.Errorf("SES_SEND_RATE must be positive, got %d", c.SESSendRate)
	}
	return nil
}

// loadFile merges a YAML config file into cfg. A missing file is not an error.
func loadFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
