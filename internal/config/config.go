package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Database (optional, dashboard routes are disabled without it)
	DatabaseURL string

	// Redis (optional, falls back to in-process rate limiting)
	RedisURL string

	// Managed auth provider token secret
	JWTSecret string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	ExtractMaxTokens     int
	QuestionTemperature  float64

	// Quiz pipeline
	Extractor         string // "gemini" | "local"
	FetchTimeout      time.Duration
	MaxPDFBytes       int64
	GenerateRateLimit int

	// Storage
	StoragePath string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	port := getEnvOrDefault("PORT", "8080")

	cfg := &Config{
		Port:                 port,
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		PublicBaseURL:        getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:"+port),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		ExtractMaxTokens:     getEnvAsIntOrDefault("EXTRACT_MAX_TOKENS", 8192),
		QuestionTemperature:  getEnvAsFloatOrDefault("QUESTION_TEMPERATURE", 0.7),
		Extractor:            mustGetEnvOneOf("EXTRACTOR", "gemini", "gemini", "local"),
		FetchTimeout:         getEnvAsDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
		MaxPDFBytes:          int64(getEnvAsIntOrDefault("MAX_PDF_BYTES", 20*1024*1024)),
		GenerateRateLimit:    getEnvAsIntOrDefault("GENERATE_RATE_LIMIT", 20),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "./uploads"),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// DashboardEnabled reports whether the relational store is configured.
func (c *Config) DashboardEnabled() bool {
	return c.DatabaseURL != ""
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

// mustGetEnvOneOf returns the env value or defaultVal, and panics on anything outside allowed.
func mustGetEnvOneOf(key, defaultVal string, allowed ...string) string {
	val := getEnvOrDefault(key, defaultVal)
	for _, a := range allowed {
		if val == a {
			return val
		}
	}
	panic(fmt.Sprintf("environment variable %s must be one of %v, got %q", key, allowed, val))
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

// getEnvAsDurationOrDefault accepts Go durations ("45s") or a bare number of seconds.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}
