package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"shorturl/internal/shortid"
)

// Storage drivers understood by Load
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Config holds all application configuration
// It is built once at startup and passed explicitly to every component
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Redis   RedisConfig
	App     AppConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration // upper bound for one shorten/resolve call
	ShutdownTimeout time.Duration
}

// StorageConfig selects and configures the mapping store
type StorageConfig struct {
	Driver     string // sqlite, postgres or bolt
	SQLitePath string
	BoltPath   string
	Postgres   DatabaseConfig
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment     string
	LogLevel        string
	LogFormat       string
	BaseURL         string // prefix of returned short URLs, defaults to http://<listen addr>
	ShortCodeLength int
	MaxAttempts     int
	EnableMetrics   bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout:    parseDuration("SERVER_WRITE_TIMEOUT", "10s"),
			IdleTimeout:     parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
			RequestTimeout:  parseDuration("SERVER_REQUEST_TIMEOUT", "5s"),
			ShutdownTimeout: parseDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", DriverSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "shorturl.db"),
			BoltPath:   getEnv("BOLT_PATH", "shorturl.bolt"),
			Postgres: DatabaseConfig{
				Host:            getEnv("DB_HOST", "localhost"),
				Port:            getEnv("DB_PORT", "5432"),
				User:            getEnv("DB_USER", "shorturl"),
				Password:        getEnv("DB_PASSWORD", ""),
				DBName:          getEnv("DB_NAME", "shorturl"),
				SSLMode:         getEnv("DB_SSLMODE", "disable"),
				MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
			},
		},
		Redis: RedisConfig{
			Enabled:  parseBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt("REDIS_DB", 0),
			CacheTTL: parseDuration("REDIS_CACHE_TTL", "1h"),
		},
		App: AppConfig{
			Environment:     getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogFormat:       getEnv("LOG_FORMAT", "json"),
			BaseURL:         strings.TrimRight(getEnv("BASE_URL", ""), "/"),
			ShortCodeLength: parseInt("SHORT_CODE_LENGTH", 6),
			MaxAttempts:     parseInt("SHORT_CODE_MAX_ATTEMPTS", 5),
			EnableMetrics:   parseBool("ENABLE_METRICS", true),
		},
	}

	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://" + cfg.Server.Addr()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s (must be 1-65535)", c.Server.Port)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty")
		}
	case DriverBolt:
		if c.Storage.BoltPath == "" {
			return errors.New("bolt path cannot be empty")
		}
	case DriverPostgres:
		if c.Storage.Postgres.Host == "" || c.Storage.Postgres.DBName == "" {
			return errors.New("postgres host and database name are required")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be sqlite, postgres or bolt)", c.Storage.Driver)
	}

	if c.App.ShortCodeLength < 1 || c.App.ShortCodeLength > shortid.MaxLength {
		return fmt.Errorf("invalid short code length: %d (must be 1-%d)", c.App.ShortCodeLength, shortid.MaxLength)
	}
	if c.App.MaxAttempts < 1 {
		return fmt.Errorf("invalid max attempts: %d (must be at least 1)", c.App.MaxAttempts)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.App.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}
	if c.App.LogFormat != "json" && c.App.LogFormat != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.App.LogFormat)
	}

	return nil
}

// Addr returns the listen address in host:port format
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format
func (c *RedisConfig) RedisAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Helper functions to parse environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		// If parsing fails, parse the default value
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
