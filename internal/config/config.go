package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация сервиса сравнения цен
type Config struct {
	// Сервер
	Port string `json:"port"`

	// База данных
	DatabasePath string `json:"database_path"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Сопоставление
	MatchThreshold  float64 `json:"match_threshold"`
	MasterThreshold float64 `json:"master_threshold"`
	MatchBatchSize  int     `json:"match_batch_size"`

	// Скраперы
	ScrapeTimeout    time.Duration `json:"scrape_timeout"`
	ScrapeRateDelay  time.Duration `json:"scrape_rate_delay"`
	ScrapeUserAgent  string        `json:"scrape_user_agent"`
	CacheDir         string        `json:"cache_dir"`
	CacheEnabled     bool          `json:"cache_enabled"`
	CacheTTL         time.Duration `json:"cache_ttl"`
	PublicEnabled    bool          `json:"public_enabled"`
	StephanisEnabled bool          `json:"stephanis_enabled"`

	// Экспорт
	ExportDir string `json:"export_dir"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		// Сервер
		Port: getEnv("SERVER_PORT", "8080"),

		// База данных
		DatabasePath: getEnv("DATABASE_PATH", "pricecompare.db"),

		// Connection pooling
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 3),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		// Сопоставление
		MatchThreshold:  getEnvFloat("MATCH_THRESHOLD", 0.7),
		MasterThreshold: getEnvFloat("MASTER_THRESHOLD", 0.75),
		MatchBatchSize:  getEnvInt("MATCH_BATCH_SIZE", 50),

		// Скраперы
		ScrapeTimeout:    getEnvDuration("SCRAPE_TIMEOUT", 15*time.Second),
		ScrapeRateDelay:  getEnvDuration("SCRAPE_RATE_DELAY", 2*time.Second),
		ScrapeUserAgent:  getEnv("SCRAPE_USER_AGENT", "PriceCompareBot/1.0"),
		CacheDir:         getEnv("SCRAPE_CACHE_DIR", ".cache/pages"),
		CacheEnabled:     getEnv("SCRAPE_CACHE_ENABLED", "true") == "true",
		CacheTTL:         getEnvDuration("SCRAPE_CACHE_TTL", 6*time.Hour),
		PublicEnabled:    getEnv("SCRAPER_PUBLIC_ENABLED", "true") == "true",
		StephanisEnabled: getEnv("SCRAPER_STEPHANIS_ENABLED", "true") == "true",

		// Экспорт
		ExportDir: getEnv("EXPORT_DIR", "exports"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
