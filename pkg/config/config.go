package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	RedisURL  string
	JWTSecret string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	CORSAllowedOrigins []string

	// PublicBaseURL is the externally visible origin used to build blob URLs
	PublicBaseURL  string
	ResumeDir      string
	ResumeMaxBytes int64

	// DeadlineInterval is how often the worker sweeps for expired listings
	DeadlineInterval time.Duration
	BrowseCacheTTL   time.Duration

	// StrictTransitions switches the application workflow from the permissive
	// any-known-status mode to the forward-only transition table. Kept behind
	// configuration until product intent is confirmed.
	StrictTransitions bool

	// RequireEmailConfirmation blocks login for unconfirmed accounts
	RequireEmailConfirmation bool

	// AdminEmails is the bootstrap allowlist of accounts permitted to take
	// the admin role. Empty means no admin can be created through the API.
	AdminEmails []string

	RateLimitPerMinute int
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	deadlineMinutes, err := strconv.Atoi(getEnv("DEADLINE_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEADLINE_INTERVAL_MINUTES: %w", err)
	}

	cacheSeconds, err := strconv.Atoi(getEnv("BROWSE_CACHE_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROWSE_CACHE_TTL_SECONDS: %w", err)
	}

	resumeMaxMB, err := strconv.Atoi(getEnv("RESUME_MAX_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESUME_MAX_MB: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "internhub"),
		DBPassword: getEnv("DB_PASSWORD", "dev"),
		DBName:     getEnv("DB_NAME", "internhub"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),

		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		ResumeDir:      getEnv("RESUME_DIR", "./data/resumes"),
		ResumeMaxBytes: int64(resumeMaxMB) * 1024 * 1024,

		DeadlineInterval: time.Duration(deadlineMinutes) * time.Minute,
		BrowseCacheTTL:   time.Duration(cacheSeconds) * time.Second,

		StrictTransitions:        boolEnv("STRICT_STATUS_TRANSITIONS", false),
		RequireEmailConfirmation: boolEnv("REQUIRE_EMAIL_CONFIRMATION", false),
		AdminEmails:              parseCSVEnv("ADMIN_EMAILS", nil),

		RateLimitPerMinute: rateLimit,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func boolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
