package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration
type Config struct {
	Environment          string
	LogLevel             string
	Port                 string
	DatabasePath         string
	ConfigDir            string
	SessionTTLMinutes    int
	SessionSweepSchedule string
	MaxHierarchyLevels   int
	PreviewRows          int
	// UploadURLRoots lists the locations uploads may be fetched from by URL.
	// Empty disables URL uploads.
	UploadURLRoots []string
}

// LoadConfig loads configuration from a .env file, when present, and
// environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	config := &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnv("PORT", "8080"),
		DatabasePath:         getEnv("DATABASE_PATH", "data/hrmigrate.db"),
		ConfigDir:            getEnv("CONFIG_DIR", "configs"),
		SessionTTLMinutes:    getEnvAsInt("SESSION_TTL_MINUTES", 120),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "*/5 * * * *"),
		MaxHierarchyLevels:   getEnvAsInt("MAX_HIERARCHY_LEVELS", 20),
		PreviewRows:          getEnvAsInt("PREVIEW_ROWS", 100),
		UploadURLRoots:       getEnvAsList("UPLOAD_URL_ROOTS"),
	}

	// Validate configuration
	if _, err := logrus.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if _, err := cron.ParseStandard(config.SessionSweepSchedule); err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_SCHEDULE: %w", err)
	}
	if config.MaxHierarchyLevels < 1 {
		return nil, fmt.Errorf("MAX_HIERARCHY_LEVELS must be at least 1")
	}
	if config.SessionTTLMinutes < 0 {
		return nil, fmt.Errorf("SESSION_TTL_MINUTES must not be negative")
	}

	return config, nil
}

// SessionTTL returns the idle session lifetime; zero disables expiry
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// SetupLogging configures the global logrus logger
func (c *Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList retrieves a comma-separated environment variable, dropping empty entries
func getEnvAsList(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
