package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	JWTSecret         string
	DBURL             string
	TmdbBaseURL       string
	TmdbAPIKey        string
	TmdbTimeoutSecs   int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	ImportTargetCount int
	ImportMaxPages    int
	ImportPageDelayMs int
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         os.Getenv("SECRET_TOKEN"),
		DBURL:             os.Getenv("DB_URL"),
		TmdbBaseURL:       os.Getenv("TMDB_BASE_URL"),
		TmdbAPIKey:        os.Getenv("TMDB_API_KEY"),
		TmdbTimeoutSecs:   getEnvInt("TMDB_TIMEOUT_SECS", 10),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		ImportTargetCount: getEnvInt("IMPORT_TARGET_COUNT", 9677),
		ImportMaxPages:    getEnvInt("IMPORT_MAX_PAGES", 500),
		ImportPageDelayMs: getEnvInt("IMPORT_PAGE_DELAY_MS", 250),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("SECRET_TOKEN is required")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.TmdbBaseURL == "" {
		return Config{}, fmt.Errorf("TMDB_BASE_URL is required")
	}
	if cfg.TmdbAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	if cfg.TmdbTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.ImportTargetCount < 0 {
		return Config{}, fmt.Errorf("IMPORT_TARGET_COUNT must be non-negative")
	}
	if cfg.ImportMaxPages <= 0 {
		return Config{}, fmt.Errorf("IMPORT_MAX_PAGES must be positive")
	}
	if cfg.ImportPageDelayMs < 0 {
		return Config{}, fmt.Errorf("IMPORT_PAGE_DELAY_MS must be non-negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
