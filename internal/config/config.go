package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB    DatabaseConfig
	Redis RedisConfig
	Feed  FeedConfig
	Sync  SyncConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// FeedConfig contains parameters for the upstream price feed.
type FeedConfig struct {
	BaseURL    string
	CategoryID int
}

// SyncConfig contains tuning for the sync pipeline and its workers.
type SyncConfig struct {
	// BatchSize is the maximum number of jobs claimed per scheduler run.
	BatchSize int
	// Delay is the pause between consecutive per-group syncs. The upstream
	// feed is rate limited, so groups are processed sequentially.
	Delay time.Duration
	// CutoffDate, when set, skips groups published before it during bulk
	// sync. Zero value disables the filter.
	CutoffDate time.Time
	// CronSpec schedules the daily full sync.
	CronSpec string
	// JobInterval is how often the job worker processes a pending batch.
	JobInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Upstream feed
	cfg.Feed = FeedConfig{
		BaseURL:    getEnv("FEED_BASE_URL", "https://tcgcsv.com/tcgplayer"),
		CategoryID: getEnvInt("FEED_CATEGORY_ID", 3),
	}

	// Sync pipeline
	cfg.Sync.BatchSize = getEnvInt("SYNC_BATCH_SIZE", 50)
	cfg.Sync.CronSpec = getEnv("SYNC_CRON", "0 3 * * *")

	var err error
	if cfg.Sync.Delay, err = parseDurationEnv("SYNC_DELAY", "1s"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_DELAY: %w", err)
	}
	if cfg.Sync.JobInterval, err = parseDurationEnv("JOB_INTERVAL", "15m"); err != nil {
		return nil, fmt.Errorf("invalid JOB_INTERVAL: %w", err)
	}
	if raw := os.Getenv("SYNC_CUTOFF_DATE"); raw != "" {
		cfg.Sync.CutoffDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_CUTOFF_DATE (want YYYY-MM-DD): %w", err)
		}
	}

	if cfg.Sync.BatchSize <= 0 {
		return nil, errors.New("SYNC_BATCH_SIZE must be positive")
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
