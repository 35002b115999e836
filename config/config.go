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

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"

	ScopeUser   = "user"
	ScopeGlobal = "global"
)

type Config struct {
	Port         string
	StoreBackend string
	PostgresURL  string
	SQLitePath   string
	MongoURI     string
	MongoDB      string

	JWTSecret string
	TokenTTL  time.Duration

	StatsScope  string
	StatsWindow int

	AMQPURL      string
	AMQPExchange string

	LogLevel  string
	LogFormat string
	GinMode   string

	ShutdownTimeout time.Duration
}

// Load читает конфигурацию из окружения. Файл .env, если он есть,
// подгружается заранее и не перекрывает уже заданные переменные.
func Load(envFiles ...string) (*Config, error) {
	if err := LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	var errs []error
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/findash.db"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDB:         getEnv("MONGO_DATABASE", "findash"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		StatsScope:      strings.ToLower(getEnv("STATS_SCOPE", ScopeUser)),
		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "findash"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		GinMode:         os.Getenv("GIN_MODE"),
		ShutdownTimeout: 10 * time.Second,
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
	}
	if cfg.StatsWindow, err = strconv.Atoi(getEnv("STATS_WINDOW_MONTHS", "12")); err != nil {
		errs = append(errs, fmt.Errorf("STATS_WINDOW_MONTHS: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// LoadDotEnv подгружает .env (или переданные файлы) в окружение.
// Отсутствующий файл не считается ошибкой.
func LoadDotEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate собирает все ошибки конфигурации в одну.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	} else if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port))
	}

	switch c.StoreBackend {
	case BackendPostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required for the postgres backend"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo backend"))
		}
		if c.MongoDB == "" {
			errs = append(errs, errors.New("MONGO_DATABASE must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be postgres, sqlite or mongo, got %q", c.StoreBackend))
	}

	if c.StatsScope != ScopeUser && c.StatsScope != ScopeGlobal {
		errs = append(errs, fmt.Errorf("STATS_SCOPE must be user or global, got %q", c.StatsScope))
	}
	if c.StatsWindow < 1 || c.StatsWindow > 120 {
		errs = append(errs, fmt.Errorf("STATS_WINDOW_MONTHS must be between 1 and 120, got %d", c.StatsWindow))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// PerUserScope reports whether reads are limited to the caller's own transactions.
func (c *Config) PerUserScope() bool {
	return c.StatsScope == ScopeUser
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
