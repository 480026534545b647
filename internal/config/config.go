package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/diabetesmx/ada-advisor/internal/logger"
)

// Storage backend selectors.
const (
	StorageCSV      = "csv"
	StoragePostgres = "postgres"
)

// Conversation state backend selectors.
const (
	StateMemory = "memory"
	StateRedis  = "redis"
)

type Config struct {
	HTTPPort      string
	TelegramToken string // empty disables the bot surface
	Storage       StorageConfig
	Catalog       CatalogConfig
	State         StateConfig
	Logger        LoggerConfig
}

type StorageConfig struct {
	Backend string // csv or postgres
	CSVPath string
	DB      DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type CatalogConfig struct {
	Path        string
	Institution string // formulary filter; empty matches all
}

type StateConfig struct {
	Backend   string // memory or redis
	RedisHost string
	RedisPort string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:      getEnvOrDefault("PORT", "8080"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", StorageCSV)),
			CSVPath: getEnvOrDefault("PROFILE_CSV_PATH", "data/perfiles.csv"),
			DB: DBConfig{
				Host:     getEnvOrDefault("DB_HOST", "localhost"),
				Port:     getEnvOrDefault("DB_PORT", "5432"),
				User:     getEnvOrDefault("DB_USER", "postgres"),
				Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
				DBName:   getEnvOrDefault("DB_NAME", "ada_advisor"),
			},
		},
		Catalog: CatalogConfig{
			Path:        getEnvOrDefault("CATALOG_CSV_PATH", "data/cuadro.csv"),
			Institution: os.Getenv("CATALOG_INSTITUTION"),
		},
		State: StateConfig{
			Backend:   strings.ToLower(getEnvOrDefault("STATE_BACKEND", StateMemory)),
			RedisHost: getEnvOrDefault("REDIS_HOST", "localhost"),
			RedisPort: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if cfg.Storage.Backend != StorageCSV && cfg.Storage.Backend != StoragePostgres {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", cfg.Storage.Backend, StorageCSV, StoragePostgres)
	}
	if cfg.State.Backend != StateMemory && cfg.State.Backend != StateRedis {
		return nil, fmt.Errorf("unknown STATE_BACKEND %q (want %s or %s)", cfg.State.Backend, StateMemory, StateRedis)
	}
	return cfg, nil
}
