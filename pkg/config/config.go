package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: watchlist universe)
	Database DatabaseConfig

	// Redis (optional: shared rate limit)
	Redis RedisConfig

	// Market data
	Yahoo YahooConfig

	// AI thesis
	Thesis ThesisConfig

	// Batch scan
	Batch BatchConfig

	// Scheduler
	ScanSchedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	SummaryURL  string        // quoteSummary endpoint (sector/industry/ROE)
	HistoryDays int           // 조회할 캘린더 일수 (SMA50 위해 넉넉히)
	RatePerSec  float64       // 프로세스 내 요청 제한
	RateBurst   int           // burst
	Timeout     time.Duration // HTTP timeout
	MaxRetries  int
}

// Thesis providers
const (
	ThesisProviderNone   = "none"
	ThesisProviderClaude = "claude"
	ThesisProviderGemini = "gemini"
)

// ThesisConfig holds the narrative generator configuration
type ThesisConfig struct {
	Provider        string // none, claude, gemini
	AnthropicAPIKey string
	GeminiAPIKey    string
	Model           string // empty → provider default
	MaxTokens       int
	Timeout         time.Duration
}

// APIKey returns the key of the selected provider
func (t ThesisConfig) APIKey() string {
	switch t.Provider {
	case ThesisProviderClaude:
		return t.AnthropicAPIKey
	case ThesisProviderGemini:
		return t.GeminiAPIKey
	default:
		return ""
	}
}

// Universe sources
const (
	UniverseDefault   = "default"
	UniverseFile      = "file"
	UniverseWatchlist = "watchlist"
	UniverseSP500     = "sp500"
)

// BatchConfig holds batch scan configuration
type BatchConfig struct {
	Workers        int
	TopN           int
	Thesis         bool // batch에서 AI thesis 생성 여부 (기본 false)
	UniverseSource string
	UniverseFile   string
	SP500URL       string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			SummaryURL:  getEnv("YAHOO_SUMMARY_URL", "https://query2.finance.yahoo.com/v10/finance/quoteSummary"),
			HistoryDays: getEnvAsInt("YAHOO_HISTORY_DAYS", 120),
			RatePerSec:  getEnvAsFloat("YAHOO_RATE_PER_SEC", 5),
			RateBurst:   getEnvAsInt("YAHOO_RATE_BURST", 5),
			Timeout:     getEnvAsDuration("YAHOO_TIMEOUT", "10s"),
			MaxRetries:  getEnvAsInt("YAHOO_MAX_RETRIES", 2),
		},

		Thesis: ThesisConfig{
			Provider:        strings.ToLower(getEnv("THESIS_PROVIDER", ThesisProviderNone)),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("THESIS_MODEL", ""),
			MaxTokens:       getEnvAsInt("THESIS_MAX_TOKENS", 400),
			Timeout:         getEnvAsDuration("THESIS_TIMEOUT", "30s"),
		},

		Batch: BatchConfig{
			Workers:        getEnvAsInt("BATCH_WORKERS", 4),
			TopN:           getEnvAsInt("BATCH_TOP_N", 20),
			Thesis:         getEnvAsBool("BATCH_THESIS", false),
			UniverseSource: strings.ToLower(getEnv("UNIVERSE_SOURCE", UniverseDefault)),
			UniverseFile:   getEnv("UNIVERSE_FILE", "config/universe.yaml"),
			SP500URL:       getEnv("SP500_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
		},

		ScanSchedule: getEnv("SCAN_SCHEDULE", "0 30 16 * * 1-5"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Thesis.Provider {
	case ThesisProviderNone, ThesisProviderClaude, ThesisProviderGemini:
	default:
		return fmt.Errorf("THESIS_PROVIDER must be one of: none, claude, gemini")
	}

	switch c.Batch.UniverseSource {
	case UniverseDefault, UniverseFile, UniverseSP500:
	case UniverseWatchlist:
		if !c.Database.Enabled() {
			return fmt.Errorf("DATABASE_URL is required for UNIVERSE_SOURCE=watchlist")
		}
	default:
		return fmt.Errorf("UNIVERSE_SOURCE must be one of: default, file, watchlist, sp500")
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be positive")
	}
	if c.Batch.TopN < 1 {
		return fmt.Errorf("BATCH_TOP_N must be positive")
	}
	if c.Yahoo.HistoryDays < 30 {
		return fmt.Errorf("YAHOO_HISTORY_DAYS must be at least 30")
	}
	if c.Yahoo.RatePerSec <= 0 {
		return fmt.Errorf("YAHOO_RATE_PER_SEC must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
