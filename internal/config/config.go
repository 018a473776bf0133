// Package config provides configuration for the application.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrDBUriNotSetInProduction is returned when DB_URI is not set in production. We need this to prevent accidental
// production deployments without a database.
var ErrDBUriNotSetInProduction = errors.New("DB_URI must be set in production")

// ErrInvalidLogLevel is returned when LOG_LEVEL is not one of debug, info, warn or error.
var ErrInvalidLogLevel = errors.New("invalid log level")

const (
	// AppEnvironmentDefault is the default application environment.
	AppEnvironmentDefault = "development"
	// AppEnvironmentProduction is the production application environment.
	AppEnvironmentProduction = "production"
	// HostDefault is the default host to listen on. Can be an IP address or hostname.
	HostDefault = "localhost"
	// PortDefault is the default port to listen on.
	PortDefault = "8080"

	// LogLevelDefault is the log level outside production.
	LogLevelDefault = "debug"
	// LogLevelProductionDefault is the log level in production.
	LogLevelProductionDefault = "info"

	// DBDriverDefault is the default database driver. Supported are sqlite and postgres.
	DBDriverDefault = "sqlite"
	// DBURIDefault is the default database URI. Default is trivia.sqlite in the current directory.
	DBURIDefault = "file:trivia.sqlite?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	// DBMaxOpenConnsDefault is the default maximum number of open database connections.
	DBMaxOpenConnsDefault = 10
	// DBMaxIdleConnsDefault is the default maximum number of idle database connections.
	DBMaxIdleConnsDefault = 10
	// DBConnMaxLifetimeDefault is the default maximum lifetime of a database connection.
	DBConnMaxLifetimeDefault = 5 * time.Minute

	// RedisDBDefault is the default Redis logical database.
	RedisDBDefault = 0
	// CategoryCacheTTLDefault is how long the category mapping is cached in Redis.
	CategoryCacheTTLDefault = 10 * time.Minute

	// CORSAllowedOriginsDefault allows every origin.
	CORSAllowedOriginsDefault = "*"
)

// Config represents the application configuration.
type Config struct {
	AppEnvironment string

	Host string
	Port string

	LogLevel string

	DBDriver string
	DBURI    string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// RedisAddr enables the category cache when set.
	RedisAddr        string
	RedisDB          int
	CategoryCacheTTL time.Duration

	CORSAllowedOrigins []string

	SeedDemoData bool

	// ClientDir serves the landing page from disk instead of the embedded copy when set.
	ClientDir string
}

// IsProduction reports whether the application runs in production.
func (c *Config) IsProduction() bool {
	return c.AppEnvironment == AppEnvironmentProduction
}

// Parse parses environment variables into the config.
func Parse(getenv func(string) string) (*Config, error) {
	c := Config{
		AppEnvironment:     AppEnvironmentDefault,
		Host:               HostDefault,
		Port:               PortDefault,
		DBDriver:           DBDriverDefault,
		DBURI:              DBURIDefault,
		DBMaxOpenConns:     DBMaxOpenConnsDefault,
		DBMaxIdleConns:     DBMaxIdleConnsDefault,
		DBConnMaxLifetime:  DBConnMaxLifetimeDefault,
		RedisDB:            RedisDBDefault,
		CategoryCacheTTL:   CategoryCacheTTLDefault,
		CORSAllowedOrigins: []string{CORSAllowedOriginsDefault},
	}
	// Overwrite defaults with environment variables.
	if val := getenv("APP_ENV"); val != "" {
		c.AppEnvironment = val
	}
	if val := getenv("HOST"); val != "" {
		c.Host = val
	}
	if val := getenv("PORT"); val != "" {
		c.Port = val
	}
	if val := getenv("DB_DRIVER"); val != "" {
		c.DBDriver = val
	}
	if val := getenv("DB_URI"); val != "" {
		c.DBURI = val
	}
	if val := getenv("REDIS_ADDR"); val != "" {
		c.RedisAddr = val
	}
	if val := getenv("CLIENT_DIR"); val != "" {
		c.ClientDir = val
	}
	if val := getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitList(val)
	}

	c.LogLevel = LogLevelDefault
	if c.IsProduction() {
		c.LogLevel = LogLevelProductionDefault
	}
	if val := getenv("LOG_LEVEL"); val != "" {
		switch lvl := strings.ToLower(val); lvl {
		case "debug", "info", "warn", "error":
			c.LogLevel = lvl
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, val)
		}
	}

	// Strict validation for types
	if val := getenv("DB_MAX_OPEN_CONNS"); val != "" {
		var err error
		c.DBMaxOpenConns, err = strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %q, err: %w", val, err)
		}
	}

	if val := getenv("DB_MAX_IDLE_CONNS"); val != "" {
		var err error
		c.DBMaxIdleConns, err = strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %q, err: %w", val, err)
		}
	}

	if val := getenv("DB_CONN_MAX_LIFETIME"); val != "" {
		var err error
		c.DBConnMaxLifetime, err = time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %q, err: %w", val, err)
		}
	}

	if val := getenv("REDIS_DB"); val != "" {
		var err error
		c.RedisDB, err = strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %q, err: %w", val, err)
		}
	}

	if val := getenv("CATEGORY_CACHE_TTL"); val != "" {
		var err error
		c.CategoryCacheTTL, err = time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid CATEGORY_CACHE_TTL: %q, err: %w", val, err)
		}
	}

	if val := getenv("SEED_DEMO_DATA"); val != "" {
		var err error
		c.SeedDemoData, err = strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_DEMO_DATA: %q, err: %w", val, err)
		}
	}

	// Mandatory fields
	if c.IsProduction() && getenv("DB_URI") == "" {
		return nil, ErrDBUriNotSetInProduction
	}

	return &c, nil
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
