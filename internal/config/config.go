package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Liveness  LivenessConfig
}

type AppConfig struct {
	Env  string
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=UTC"
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// JWTConfig carries the verification secret. Expiry only applies to tokens
// minted by the seeder; sessions are issued elsewhere.
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type CORSConfig struct {
	Origins []string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

// RateLimitConfig bounds the unauthenticated ingestion endpoint per client IP.
type RateLimitConfig struct {
	IngestRPS   int
	IngestBurst int
}

// Enabled reports whether ingestion should be limited. INGEST_RATE_LIMIT=0
// (or below) turns the limiter off.
func (r RateLimitConfig) Enabled() bool {
	return r.IngestRPS > 0
}

// LivenessConfig controls the recurring offline sweep.
type LivenessConfig struct {
	Enabled  bool
	Interval time.Duration
	Timeout  time.Duration
	LockTTL  time.Duration
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading from environment variables")
	}

	ingestRPS := getEnvAsInt("INGEST_RATE_LIMIT", 20)

	return &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Port: getEnv("APP_PORT", "8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "farmiot"),
			Password: getEnv("DB_PASSWORD", "farmiot"),
			Name:     getEnv("DB_NAME", "farmiot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-secret"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		CORS: CORSConfig{
			Origins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			IngestRPS:   ingestRPS,
			IngestBurst: getEnvAsInt("INGEST_RATE_BURST", ingestRPS*2),
		},
		Liveness: LivenessConfig{
			Enabled:  getEnvAsBool("LIVENESS_ENABLED", true),
			Interval: getEnvAsDuration("LIVENESS_INTERVAL", 5*time.Minute),
			Timeout:  getEnvAsDuration("LIVENESS_TIMEOUT", 30*time.Minute),
			LockTTL:  getEnvAsDuration("LIVENESS_LOCK_TTL", time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if valueStr, ok := os.LookupEnv(key); ok {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if valueStr, ok := os.LookupEnv(key); ok {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if valueStr, ok := os.LookupEnv(key); ok {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return fallback
}
