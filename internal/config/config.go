// Package config loads shiprec settings from environment variables and
// validates them on startup.
package config

import (
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Exchange ExchangeConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Archive  ArchiveConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including running jobs (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// MaxBodySize caps uploaded import files in bytes (default: 32MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"33554432"`

	// RequestsPerMinute limits requests per client IP; 0 disables limiting (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	// Driver is memory, sqlite or postgres (default: sqlite)
	Driver string `env:"STORE_DRIVER" default:"sqlite"`

	// DSN is the PostgreSQL connection string, required for the postgres driver.
	DSN string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver (default: shiprec.db)
	SQLitePath string `env:"SQLITE_PATH" default:"shiprec.db"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ExchangeConfig holds import and export job settings.
type ExchangeConfig struct {
	// ExportPath is the directory exports are written to (default: exports)
	ExportPath string `env:"EXPORT_PATH" default:"exports"`

	// MaxConcurrent is the number of jobs that may run at once (default: 4)
	MaxConcurrent int `env:"JOB_MAX_CONCURRENT" default:"4"`

	// JobWait is how long a job waits for its kind's slot (default: 30s)
	JobWait time.Duration `env:"JOB_WAIT_TIME" default:"30s"`

	// JobTimeout bounds a background job (default: 10m)
	JobTimeout time.Duration `env:"JOB_TIMEOUT" default:"10m"`

	// ExportInterval runs a full export of every kind periodically; 0 disables it
	ExportInterval time.Duration `env:"EXPORT_INTERVAL" default:"0s"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are honoured
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ArchiveConfig configures copying exports to S3. Archiving is off unless
// Bucket is set.
type ArchiveConfig struct {
	Bucket    string `env:"ARCHIVE_S3_BUCKET"`
	Region    string `env:"ARCHIVE_S3_REGION" envAlt:"AWS_REGION" default:"us-east-1"`
	Endpoint  string `env:"ARCHIVE_S3_ENDPOINT"`
	Prefix    string `env:"ARCHIVE_S3_PREFIX"`
	PathStyle bool   `env:"ARCHIVE_S3_PATH_STYLE" default:"false"`
}

// Enabled reports whether exports should be archived.
func (c *ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
