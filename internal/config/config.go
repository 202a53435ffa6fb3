/**
 * @description
 * Configuration loader for the hedge-fund data cache.
 * Responsible for reading environment variables, setting defaults, and performing
 * strict validation. Invalid cache modes or malformed connection strings are
 * rejected here, at load time, never deferred to first use.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 *
 * @notes
 * - CACHE_MODE selects the tier composition; see internal/cache.
 * - DATABASE_URL accepts sqlite:///path and postgres:// connection strings.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// CacheMode selects which storage tiers the cache facade assembles.
type CacheMode string

const (
	// ModeFull probes Redis, then SQL, then memory.
	ModeFull CacheMode = "full"
	// ModeRedis probes Redis, then memory. No persistent storage.
	ModeRedis CacheMode = "redis"
	// ModeMemory keeps everything in-process.
	ModeMemory CacheMode = "memory"
	// ModeNone disables caching entirely; every read goes to the upstream API.
	ModeNone CacheMode = "none"
)

// ConfigError reports an invalid or malformed configuration value.
// It is fatal at construction time.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Key, e.Reason)
}

// Config holds all configuration for the data cache
type Config struct {
	Server ServerConfig
	Cache  CacheConfig
	DB     DBConfig
	Redis  RedisConfig
	API    APIConfig
}

// ServerConfig holds process-level settings
type ServerConfig struct {
	Env string // "development", "test" or "production"
}

// CacheConfig holds tier-selection settings
type CacheConfig struct {
	Mode CacheMode
	// AutoInitialize controls whether the facade singleton builds its tier
	// chain eagerly at startup or lazily on first access.
	AutoInitialize bool
}

// DBConfig holds settings for the persistent tier
type DBConfig struct {
	URL string
}

// RedisConfig holds settings for the distributed tier
type RedisConfig struct {
	URL string
	// ExpirationSeconds is the TTL applied to every entry written to Redis.
	ExpirationSeconds int
}

// APIConfig holds settings for the upstream financial data API
type APIConfig struct {
	BaseURL string
	Key     string
}

// Load reads .env (if present) and populates the Config struct
func Load() (*Config, error) {
	// Don't crash if .env is missing; prod injects env vars directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Env: getEnv("GO_ENV", "development"),
		},
		Cache: CacheConfig{
			Mode:           CacheMode(strings.ToLower(getEnv("CACHE_MODE", "full"))),
			AutoInitialize: getEnvAsBool("AUTO_INITIALIZE", true),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", "sqlite:///./data.db"),
		},
		Redis: RedisConfig{
			URL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
			ExpirationSeconds: getEnvAsInt("REDIS_EXPIRATION", 604800), // 7 days
		},
		API: APIConfig{
			BaseURL: getEnv("FINANCIAL_DATASETS_BASE_URL", "https://api.financialdatasets.ai"),
			Key:     getEnv("FINANCIAL_DATASETS_API_KEY", ""),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects unknown modes and malformed connection strings
func validate(cfg *Config) error {
	switch cfg.Cache.Mode {
	case ModeFull, ModeRedis, ModeMemory, ModeNone:
	default:
		return &ConfigError{Key: "CACHE_MODE", Reason: fmt.Sprintf("unknown mode %q (want full|redis|memory|none)", cfg.Cache.Mode)}
	}

	if cfg.Cache.Mode == ModeFull {
		if !strings.HasPrefix(cfg.DB.URL, "sqlite://") && !strings.HasPrefix(cfg.DB.URL, "postgres://") && !strings.HasPrefix(cfg.DB.URL, "postgresql://") {
			return &ConfigError{Key: "DATABASE_URL", Reason: fmt.Sprintf("unsupported scheme in %q", cfg.DB.URL)}
		}
	}

	if cfg.Cache.Mode == ModeFull || cfg.Cache.Mode == ModeRedis {
		if !strings.HasPrefix(cfg.Redis.URL, "redis://") && !strings.HasPrefix(cfg.Redis.URL, "rediss://") {
			return &ConfigError{Key: "REDIS_URL", Reason: fmt.Sprintf("unsupported scheme in %q", cfg.Redis.URL)}
		}
	}

	if cfg.Redis.ExpirationSeconds <= 0 {
		return &ConfigError{Key: "REDIS_EXPIRATION", Reason: "must be a positive number of seconds"}
	}

	return nil
}

// SQLitePath extracts the file path from a sqlite:/// connection string.
// Returns the path and true when the URL targets sqlite.
func (c DBConfig) SQLitePath() (string, bool) {
	if !strings.HasPrefix(c.URL, "sqlite://") {
		return "", false
	}
	path := strings.TrimPrefix(c.URL, "sqlite://")
	// sqlite:///./data.db -> ./data.db (three slashes, relative path)
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		path = "./data.db"
	}
	return path, true
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper to get env var as int
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as bool
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}
