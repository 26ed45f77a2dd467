package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"spendwise/internal/database"
	"spendwise/internal/logger"
)

const devJWTSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration

	// Database
	Database      database.Config
	MigrationsDir string
	StoreTimeout  time.Duration

	// JWT
	JWTSecret        string
	JWTIssuer        string
	JWTExpirationDur time.Duration

	// Password hashing
	PasswordHasher string
	BcryptCost     int

	// Optional X-API-Key guarding /metrics.
	MetricsAPIKey string

	// Budget alert notifications; empty URL means log-only.
	AMQPURL   string
	AMQPQueue string
}

// Load loads configuration from environment variables, reading a .env file first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug(".env file not found, using process environment")
	}

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Port:              getEnv("PORT", "8080"),
		ReadHeaderTimeout: getDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		Database: database.Config{
			Driver:     getEnv("DB_DRIVER", database.DriverPostgres),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "spendwise"),
			Password:   getEnv("DB_PASSWORD", "spendwise"),
			DBName:     getEnv("DB_NAME", "spendwise"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "spendwise.db"),
		},
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		StoreTimeout:  getDuration("STORE_TIMEOUT", 5*time.Second),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "spendwise-api"),
		JWTExpirationDur: getDuration("JWT_EXPIRES_IN", time.Hour),

		PasswordHasher: getEnv("PASSWORD_HASHER", "bcrypt"),
		BcryptCost:     getInt("BCRYPT_COST", 12),

		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),

		AMQPURL:   getEnv("AMQP_URL", ""),
		AMQPQueue: getEnv("AMQP_QUEUE", "budget_alerts"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		logger.Get().Warn("JWT_SECRET not set, using development fallback secret")
		cfg.JWTSecret = devJWTSecret
	}

	switch cfg.Database.Driver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return nil, errors.New("DB_DRIVER must be one of postgres, sqlite")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Get().Warnf("invalid %s value '%s', falling back to %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Get().Warnf("invalid %s value '%s', falling back to %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
