package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App    AppConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Logger LoggerConfig
	Seed   SeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// MongoConfig holds document store connection values.
type MongoConfig struct {
	URI                 string
	Database            string
	MaxPoolSize         uint64
	ConnectTimeoutSec   int
	QueryTimeoutSeconds int
	EnsureIndexes       bool
}

// RedisConfig holds Redis connection values for the classifier cache.
type RedisConfig struct {
	Addr              string
	Password          string
	DB                int
	CacheEnabled      bool
	ClassifierTTLSecs int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SeedConfig controls the sample-data generator in cmd/seed.
type SeedConfig struct {
	TicketCount int
	StartDate   string
	SpanDays    int
	Reopenings  int
	Drop        bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-analytics"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Mongo: MongoConfig{
			URI:                 getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database:            getEnv("MONGO_DATABASE", "capta_tickets_db"),
			MaxPoolSize:         uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 20)),
			ConnectTimeoutSec:   getEnvAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10),
			QueryTimeoutSeconds: getEnvAsInt("MONGO_QUERY_TIMEOUT_SECONDS", 15),
			EnsureIndexes:       getEnvAsBool("MONGO_ENSURE_INDEXES", true),
		},
		Redis: RedisConfig{
			Addr:              getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:          os.Getenv("REDIS_PASSWORD"),
			DB:                redisDB,
			CacheEnabled:      getEnvAsBool("CLASSIFIER_CACHE_ENABLED", true),
			ClassifierTTLSecs: getEnvAsInt("CLASSIFIER_CACHE_TTL_SECONDS", 600),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Seed: SeedConfig{
			TicketCount: getEnvAsInt("SEED_TICKET_COUNT", 100),
			StartDate:   getEnv("SEED_START_DATE", "2025-01-01"),
			SpanDays:    getEnvAsInt("SEED_SPAN_DAYS", 45),
			Reopenings:  getEnvAsInt("SEED_REOPENINGS", 10),
			Drop:        getEnvAsBool("SEED_DROP", false),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ConnectTimeout returns the store connection timeout.
func (m MongoConfig) ConnectTimeout() time.Duration {
	if m.ConnectTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(m.ConnectTimeoutSec) * time.Second
}

// QueryTimeout returns the per-query deadline applied by the services.
func (m MongoConfig) QueryTimeout() time.Duration {
	if m.QueryTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(m.QueryTimeoutSeconds) * time.Second
}

// ClassifierTTL returns the classifier cache entry lifetime.
func (r RedisConfig) ClassifierTTL() time.Duration {
	if r.ClassifierTTLSecs <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(r.ClassifierTTLSecs) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
