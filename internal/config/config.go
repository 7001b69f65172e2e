package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session backends supported by SESSION_BACKEND.
const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// APIBaseURL is the MiniUni backend, including the /api prefix.
	APIBaseURL string

	SessionBackend string
	RedisURL       string
	// SessionIdleTTL of zero keeps tab sessions until logout.
	SessionIdleTTL time.Duration

	TabCookieName   string
	TabCookieSecret string
	TabCookieSecure bool

	FlashTTL time.Duration

	// DemoLoginEnabled exposes the client-only demo login. Not for production.
	DemoLoginEnabled bool

	LoginRateLimit int
	// AllowedOrigins controls HTTP CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "pretty"),
		APIBaseURL:       strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5001/api"), "/"),
		SessionBackend:   getEnv("SESSION_BACKEND", SessionBackendRedis),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionIdleTTL:   time.Duration(getEnvInt("SESSION_IDLE_TTL_HOURS", 0)) * time.Hour,
		TabCookieName:    getEnv("TAB_COOKIE_NAME", "miniuni_tab"),
		TabCookieSecret:  getEnv("TAB_COOKIE_SECRET", "change-this-to-a-secure-random-string"),
		TabCookieSecure:  getEnvBool("TAB_COOKIE_SECURE", false),
		FlashTTL:         time.Duration(getEnvInt("FLASH_TTL_SECONDS", 3)) * time.Second,
		DemoLoginEnabled: getEnvBool("DEMO_LOGIN_ENABLED", true),
		LoginRateLimit:   getEnvInt("LOGIN_RATE_LIMIT", 30),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
