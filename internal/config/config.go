package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// CORS (the browser SPA is the only consumer)
	AllowedOrigins []string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Generation gate cache
	GateCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Firestore (document store backend)
	FirestoreProjectID string
	FirestoreDatabase  string
	GoogleAPIToken     string
	UseFirestore       bool

	// Blob storage (card logos)
	StorageBucket string

	// JWT / Auth
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
}

// Load reads configuration from environment variables with defaults.
// UseFirestore=false keeps everything in memory, which is how local dev and
// the integration tests run.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "*")},

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		GateCacheTTL: getEnvDuration("GATE_CACHE_TTL", 1*time.Hour),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreDatabase:  getEnv("FIRESTORE_DATABASE", "(default)"),
		GoogleAPIToken:     getEnv("GOOGLE_API_TOKEN", ""),
		UseFirestore:       getEnv("USE_FIRESTORE", "true") == "true",

		StorageBucket: getEnv("STORAGE_BUCKET", ""),

		JWTSecret:     getEnv("JWT_SECRET", "synapse-default-dev-secret-change-me"),
		JWTAccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
