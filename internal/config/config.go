// Package config provides centralized configuration for the pex CLI and
// preview server. Settings come from environment variables (optionally via
// a .env file) with defaults, and are validated on startup.
package config

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/pex/internal/loader"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Security SecurityConfig
	Upload   UploadConfig
	Loader   LoaderConfig
	Logging  LoggingConfig
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"PEX_SERVER_HOST" envAlt:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"PEX_SERVER_PORT" envAlt:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"PEX_SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"PEX_SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"PEX_SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining loads (default: 30s)
	ShutdownTimeout time.Duration `env:"PEX_SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"PEX_SERVER_REQUEST_TIMEOUT" default:"60s"`

	// RequestsPerMinute is the per-IP rate limit (default: 120)
	RequestsPerMinute int `env:"PEX_SERVER_RATE_LIMIT" default:"120"`

	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For headers
	// are honoured. Empty means headers are ignored.
	TrustedProxies []string `env:"PEX_SERVER_TRUSTED_PROXIES"`

	// MetricsEnabled serves Prometheus metrics on /metrics (default: true)
	MetricsEnabled bool `env:"PEX_METRICS_ENABLED" default:"true"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api/load (default: false)
	RequireAPIKey bool `env:"PEX_REQUIRE_API_KEY" default:"false"`

	// APIKeys are the accepted keys, comma-separated
	APIKeys []string `env:"PEX_API_KEYS"`
}

// UploadConfig holds limits for files posted to the preview server.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 50MB)
	MaxFileSize int64 `env:"PEX_UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of loads running at once (default: 4)
	MaxConcurrent int `env:"PEX_UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a load slot (default: 10s)
	MaxWaitTime time.Duration `env:"PEX_UPLOAD_MAX_WAIT_TIME" default:"10s"`

	// TempDir is where uploads are staged before loading (default: OS temp dir)
	TempDir string `env:"PEX_UPLOAD_TEMP_DIR"`
}

// LoaderConfig holds default load options shared by the CLI and server.
type LoaderConfig struct {
	// Sep is the default delimiter for delimited text (default: ",")
	Sep string `env:"PEX_SEP" default:","`

	// HeaderExist controls whether the first row is a header (default: true)
	HeaderExist bool `env:"PEX_HEADER_EXIST" default:"true"`

	// Sheet is the default sheet selector: index, name, or "all" (default: 0)
	Sheet string `env:"PEX_SHEET" default:"0"`

	// NAValues are extra missing-value markers, "|"-separated
	NAValues []string `env:"PEX_NA_VALUES" sep:"|"`

	// KeepDefaultNA keeps the standard NA marker list (default: true)
	KeepDefaultNA bool `env:"PEX_KEEP_DEFAULT_NA" default:"true"`

	// PreviewRows is how many rows summaries show (default: 20)
	PreviewRows int `env:"PEX_PREVIEW_ROWS" default:"20"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Options converts the loader defaults into loader options.
func (c LoaderConfig) Options() loader.Options {
	o := loader.DefaultOptions()
	o.Sep = c.Sep
	o.HeaderExist = c.HeaderExist
	o.Sheet = loader.ParseSheetSelector(c.Sheet)
	o.KeepDefaultNA = c.KeepDefaultNA
	if len(c.NAValues) > 0 {
		o.NAValues = loader.NAList(c.NAValues...)
	}
	return o
}
