package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        string
	Portal      PortalConfig
	ClassCache  ClassCacheConfig
	CORSOrigins []string
}

type PortalConfig struct {
	HowdyBaseURL   string
	CompassBaseURL string
	// RequestTimeout bounds each individual portal call.
	RequestTimeout time.Duration
	// AggregateTimeout bounds one whole section aggregate. Zero disables it.
	AggregateTimeout time.Duration
	FanoutLimit      int
}

type CacheBackend string

const (
	CacheBackendMemory   CacheBackend = "memory"
	CacheBackendSnapshot CacheBackend = "snapshot"
	CacheBackendRedis    CacheBackend = "redis"
)

type ClassCacheConfig struct {
	Backend        CacheBackend
	TTL            time.Duration
	SnapshotDir    string
	SnapshotWindow time.Duration
	RedisURL       string
}

// Load loads configuration from environment variables.
// In development, values from a .env file in the working directory are
// loaded first; variables already set in the environment take precedence.
func Load() Config {
	if getEnv("SEATWATCH_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	return Config{
		Env:  getEnv("SEATWATCH_ENV", "development"),
		Port: getEnv("PORT", "8000"),
		Portal: PortalConfig{
			HowdyBaseURL:     getEnv("HOWDY_BASE_URL", "https://howdy.tamu.edu"),
			CompassBaseURL:   getEnv("COMPASS_BASE_URL", "https://compass-ssb.tamu.edu"),
			RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			AggregateTimeout: getEnvDuration("AGGREGATE_TIMEOUT", 0),
			FanoutLimit:      getEnvInt("FANOUT_LIMIT", 16),
		},
		ClassCache: ClassCacheConfig{
			Backend:        CacheBackend(getEnv("CLASS_CACHE", string(CacheBackendMemory))),
			TTL:            getEnvDuration("CLASS_CACHE_TTL", 5*time.Minute),
			SnapshotDir:    getEnv("SNAPSHOT_DIR", "./cache"),
			SnapshotWindow: getEnvDuration("SNAPSHOT_WINDOW", time.Hour),
			RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "https://aggieseek.net"}),
	}
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
