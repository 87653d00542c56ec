// Package config provides centralized configuration for the bulk order service.
// Values come from environment variables (optionally seeded from a .env file)
// with defaults, and are validated on startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Upload   UploadConfig
	Backend  BackendConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Tips     TipConfig
	Reports  ReportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request in the chi Timeout middleware.
	// The /wait endpoint blocks on enrichment, so keep it above BACKEND_TIMEOUT.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL pool settings.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// RedisConfig holds the quote store connection.
type RedisConfig struct {
	URL string `env:"REDIS_URL" default:"redis://localhost:6379/0"`

	// QuoteTTL is how long an untouched quote draft and note survive.
	QuoteTTL time.Duration `env:"QUOTE_TTL" default:"720h"`
}

// UploadConfig holds bulk upload settings.
type UploadConfig struct {
	// MaxFileSize in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"5"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds one enrichment round trip including queueing.
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`

	// SessionTTL expires upload sessions nobody has touched.
	SessionTTL time.Duration `env:"UPLOAD_SESSION_TTL" default:"30m"`
}

// BackendConfig describes the product bulk-upload endpoints.
type BackendConfig struct {
	B2BURL string `env:"BACKEND_B2B_URL" default:"http://localhost:9000/graphql"`
	BCURL  string `env:"BACKEND_BC_URL" default:"http://localhost:9000/bc/graphql"`
	Token  string `env:"BACKEND_TOKEN"`

	Timeout   time.Duration `env:"BACKEND_TIMEOUT" default:"30s"`
	RateLimit float64       `env:"BACKEND_RATE_LIMIT" default:"10"`
	RateBurst int           `env:"BACKEND_RATE_BURST" default:"5"`

	DefaultCurrency  string `env:"DEFAULT_CURRENCY" default:"USD"`
	DefaultChannelID int    `env:"DEFAULT_CHANNEL_ID" default:"1"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
	UploadLimit       int  `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
	EnableCSP      bool     `env:"SECURITY_ENABLE_CSP" default:"true"`

	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`

	// MasqueradeSecret signs masquerade tokens (HS256).
	MasqueradeSecret   string        `env:"MASQUERADE_JWT_SECRET" default:"change-me-in-production"`
	MasqueradeTokenTTL time.Duration `env:"MASQUERADE_TOKEN_TTL" default:"8h"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// TipConfig controls the transient notification center.
type TipConfig struct {
	AutoHide      time.Duration `env:"TIP_AUTO_HIDE" default:"3s"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" default:"1s"`
}

// ReportConfig controls where rejection reports are archived.
// Archiving is disabled when Bucket is empty.
type ReportConfig struct {
	Bucket string `env:"REPORT_S3_BUCKET"`
	Prefix string `env:"REPORT_S3_PREFIX" default:"bulk-upload-reports/"`
	Region string `env:"AWS_REGION" default:"us-east-1"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
