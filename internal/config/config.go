package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string

	// Upstream data source configuration
	DataSourceURL   string
	ReportSinkURL   string
	RequestTimeout  time.Duration
	CacheTTL        time.Duration
	RefreshInterval time.Duration

	// Redis payload cache configuration (optional, disabled when addr empty)
	RedisAddr string

	// Report submission rate limiting
	RateLimitEnabled    bool
	RateLimitCapacity   int
	RateLimitRefillRate int

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads an optional .env file, then parses environment variables and
// returns a Config populated with defaults when variables are absent.
func Load() Config {
	_ = gotenv.Load()

	cfg := Config{}

	cfg.Port = getenv("PORT", "8686")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 15*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "scamwatch")

	cfg.DataSourceURL = getenv("DATA_SOURCE_URL", "")
	cfg.ReportSinkURL = getenv("REPORT_SINK_URL", "")
	cfg.RequestTimeout = envDuration("REQUEST_TIMEOUT", 10*time.Second)
	cfg.CacheTTL = envDuration("CACHE_TTL", 5*time.Minute)
	// default to one automatic refresh per minute
	cfg.RefreshInterval = envDuration("REFRESH_INTERVAL", time.Minute)

	cfg.RedisAddr = getenv("REDIS_ADDR", "")

	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", true)
	cfg.RateLimitCapacity = envInt("RATE_LIMIT_CAPACITY", 5)
	cfg.RateLimitRefillRate = envInt("RATE_LIMIT_REFILL_RATE", 1)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.OTLPEndpoint = getenv("OTLP_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	return cfg
}

// Validate reports configuration errors that should abort startup.
func (c Config) Validate() error {
	if c.DataSourceURL == "" {
		return errors.New("DATA_SOURCE_URL must be set")
	}
	if c.ReportSinkURL == "" {
		return errors.New("REPORT_SINK_URL must be set")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
