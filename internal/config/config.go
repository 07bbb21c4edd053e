package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the dataforge server. It is loaded
// once at startup and passed by reference into each component; nothing
// mutates it afterwards.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	// SecretKey signs access tokens. Required; there is no default.
	SecretKey string
	TokenTTL  time.Duration
}

type JobsConfig struct {
	// Workers is the size of the background worker pool.
	Workers int
	// ProcessingDelay simulates the dataset processing step.
	ProcessingDelay time.Duration
	// TerminalCacheTTL bounds how long finished jobs stay in Redis.
	TerminalCacheTTL time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("DATAFORGE_PORT", 8080),
			Env:             envString("DATAFORGE_ENV", "development"),
			RateLimitPerMin: envInt("DATAFORGE_RATE_LIMIT_PER_MIN", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			SecretKey: os.Getenv("AUTH_SECRET_KEY"),
			TokenTTL:  envDuration("AUTH_TOKEN_TTL", 60*time.Minute),
		},
		Jobs: JobsConfig{
			Workers:          envInt("JOB_WORKERS", 4),
			ProcessingDelay:  envDuration("JOB_PROCESSING_DELAY", 5*time.Second),
			TerminalCacheTTL: envDuration("JOB_TERMINAL_CACHE_TTL", 10*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Auth.SecretKey == "" {
		return fmt.Errorf("AUTH_SECRET_KEY is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}

	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("JOB_WORKERS must be positive, got %d", c.Jobs.Workers)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
