package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	RedisURL    string
	Environment string

	// ReportCacheTTL is how long generated reports stay cached. Zero disables caching.
	ReportCacheTTL time.Duration
	// LibraryPath points at a reference library YAML; empty means the embedded default.
	LibraryPath string

	DefaultDueDays       int
	RecurrenceWindowDays int

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("REPORT_CACHE_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_CACHE_TTL: %w", err)
	}
	dueDays, err := getEnvInt("DEFAULT_DUE_DAYS", 14)
	if err != nil {
		return nil, err
	}
	windowDays, err := getEnvInt("RECURRENCE_WINDOW_DAYS", 90)
	if err != nil {
		return nil, err
	}
	eventsEnabled, err := strconv.ParseBool(getEnv("EVENTS_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENTS_ENABLED: %w", err)
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		RedisURL:             os.Getenv("REDIS_URL"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		ReportCacheTTL:       ttl,
		LibraryPath:          os.Getenv("LIBRARY_PATH"),
		DefaultDueDays:       dueDays,
		RecurrenceWindowDays: windowDays,
		Events: EventConfig{
			Enabled:         eventsEnabled,
			Publisher:       getEnv("EVENTS_PUBLISHER", "channel"),
			KafkaBrokers:    getEnv("KAFKA_BROKERS", "localhost:9092"),
			ComplianceTopic: getEnv("COMPLIANCE_TOPIC", "qa-compliance"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}
