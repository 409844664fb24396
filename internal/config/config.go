package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported store drivers.
const (
	DriverBadger   = "badger"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Store  StoreConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string
	Development bool
}

// StoreConfig selects and configures the article store backend.
type StoreConfig struct {
	Driver      string
	BadgerPath  string
	RedisAddr   string
	PostgresDSN string
	MongoURI    string
	MongoDBName string
}

// Load reads the configuration with Read and validates it.
func Load(envFile string) (*Config, error) {
	cfg, err := Read(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads environment variables (from envFile, or ./.env when present) and
// materializes a Config without validating it, so callers can layer flags on top.
func Read(envFile string) (*Config, error) {
	if envFile != "" {
		// An explicitly named file must exist.
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed loading .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level:       getenvWithDefault("LOG_LEVEL", "info"),
			Development: getenvBool("LOG_DEVELOPMENT", false),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverBadger)),
			BadgerPath:  getenvWithDefault("BADGER_PATH", "./badger-data"),
			RedisAddr:   getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
			MongoURI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "articles"),
		},
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	return c.Store.Validate()
}

// Validate checks that the selected driver is known and has its connection setting.
func (s StoreConfig) Validate() error {
	switch s.Driver {
	case DriverBadger:
		if s.BadgerPath == "" {
			return errors.New("BADGER_PATH must be provided for the badger store")
		}
	case DriverRedis:
		if s.RedisAddr == "" {
			return errors.New("REDIS_ADDR must be provided for the redis store")
		}
	case DriverPostgres:
		if s.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN must be provided for the postgres store")
		}
	case DriverMongo:
		switch {
		case s.MongoURI == "":
			return errors.New("MONGODB_URI must be provided for the mongo store")
		case s.MongoDBName == "":
			return errors.New("MONGODB_DB_NAME must be provided for the mongo store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", s.Driver)
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
