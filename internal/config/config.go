package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the environment-driven configuration for the webauditor
// server/worker processes (the CLI reads its own settings from flags,
// see cmd/webauditor).
type Config struct {
	MongoURI string
	DBName   string

	RedisURL      string
	RedisPassword string
	RedisDB       int

	JWTSecret    string
	JWTExpiresIn string
	BcryptCost   int

	AdminUsername     string
	AdminPasswordHash string

	GeminiAPIKey string
	GeminiModel  string

	Port        string
	GinMode     string
	CORSOrigins []string

	RateLimitRequests int
	RateLimitWindow   int

	DefaultMaxDepth    int
	DefaultMaxPages    int
	DefaultMaxThreads  int
	DefaultViewportW   int
	DefaultViewportH   int
	ChromeExecPath     string
	NavigateTimeoutSec int

	ScheduleCron     string
	ScheduleStartURL string
	ScheduleCrawl    bool
}

// LoadConfig loads .env (if present) and environment variables into a
// Config, applying defaults and validating the handful of settings the
// server/worker processes cannot run without.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/webauditor"),
		DBName:   getEnv("DB_NAME", "webauditor"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "24h"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   getEnvInt("RATE_LIMIT_WINDOW", 60),

		DefaultMaxDepth:    getEnvInt("DEFAULT_MAX_DEPTH", 3),
		DefaultMaxPages:    getEnvInt("DEFAULT_MAX_PAGES", 50),
		DefaultMaxThreads:  getEnvInt("DEFAULT_MAX_THREADS", 3),
		DefaultViewportW:   getEnvInt("DEFAULT_VIEWPORT_WIDTH", 1920),
		DefaultViewportH:   getEnvInt("DEFAULT_VIEWPORT_HEIGHT", 1080),
		ChromeExecPath:     getEnv("CHROME_EXEC_PATH", ""),
		NavigateTimeoutSec: getEnvInt("NAVIGATE_TIMEOUT_SECONDS", 30),

		ScheduleCron:     getEnv("SCHEDULE_CRON", ""),
		ScheduleStartURL: getEnv("SCHEDULE_START_URL", ""),
		ScheduleCrawl:    getEnvBool("SCHEDULE_CRAWL", false),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is required - set it in .env file (bcrypt hash, see utils.HashPassword)")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
