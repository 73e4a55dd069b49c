// Package config loads TrackIQ runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the placeholder secret shipped in .env.example.
const DefaultJWTSecret = "change-me-in-production"

// Config is the full configuration surface of the server and worker.
type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	DBMaxConns      int32
	JWTSecret       string
	JWTExpiresIn    time.Duration
	CORSOrigins     []string
	LogLevel        string
	PageDefault     int
	PageMax         int
	LowStockCron    string
	LowStockWebhook string
	LowStockSecret  string
	RedisURL        string
	ShutdownTimeout time.Duration
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the optional env file and materializes a validated Config.
// A missing file is not an error; the process environment always wins.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "5000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBMaxConns:      int32(getEnvInt("DB_MAX_CONNS", 20)),
		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiresIn:    getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		CORSOrigins:     splitList(getEnv("CORS_ORIGIN", "http://localhost:3000")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PageDefault:     getEnvInt("PAGINATION_DEFAULT", 10),
		PageMax:         getEnvInt("PAGINATION_MAX", 100),
		LowStockCron:    getEnv("LOW_STOCK_CRON", "0 */6 * * *"),
		LowStockWebhook: os.Getenv("LOW_STOCK_WEBHOOK_URL"),
		LowStockSecret:  os.Getenv("LOW_STOCK_WEBHOOK_SECRET"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch {
	case c.DatabaseURL == "":
		return errors.New("DATABASE_URL must be provided")
	case c.Port == "":
		return errors.New("PORT must not be empty")
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET must not be empty")
	case c.JWTExpiresIn <= 0:
		return errors.New("JWT_EXPIRES_IN must be positive")
	case c.PageDefault <= 0 || c.PageMax <= 0:
		return errors.New("pagination limits must be positive")
	case c.PageDefault > c.PageMax:
		return fmt.Errorf("PAGINATION_DEFAULT (%d) exceeds PAGINATION_MAX (%d)", c.PageDefault, c.PageMax)
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be changed in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
