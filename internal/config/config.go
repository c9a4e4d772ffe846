package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jonesrussell/reelranker/internal/logger"
)

// Default values.
const (
	DefaultBaseURL       = "http://localhost:8000"
	DefaultLoginURL      = "/login"
	DefaultSessionKey    = "auth_token"
	DefaultRedisAddress  = "localhost:6379"
	DefaultRedisPrefix   = "reelranker"
	DefaultMockAddr      = ":8000"
	DefaultMockRate      = 60
	DefaultWatchSchedule = "@every 5m"
	defaultSessionDir    = ".reelranker"
	defaultSessionFile   = "session.json"
)

// Session storage backends.
const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config is the full reelranker configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	Logging logger.Config `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
	Mock    MockConfig    `yaml:"mock"`
}

// APIConfig points the transport client at the remote service.
type APIConfig struct {
	BaseURL   string `env:"REELRANKER_API_URL"    yaml:"base_url"`
	RequestID bool   `env:"REELRANKER_REQUEST_ID" yaml:"request_id"`
}

// AuthConfig holds the authentication boundary the client redirects to on 401.
type AuthConfig struct {
	LoginURL string `env:"REELRANKER_LOGIN_URL" yaml:"login_url"`
}

// SessionConfig selects where the credential is persisted.
type SessionConfig struct {
	Backend string      `env:"REELRANKER_SESSION_BACKEND" yaml:"backend"`
	Key     string      `yaml:"key"`
	File    string      `env:"REELRANKER_SESSION_FILE"    yaml:"file"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the redis session backend.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// MetricsConfig controls the Prometheus endpoint of long-running commands.
type MetricsConfig struct {
	Addr string `env:"REELRANKER_METRICS_ADDR" yaml:"addr"`
}

// WatchConfig drives the scheduled trending refresh.
type WatchConfig struct {
	Schedule string `env:"REELRANKER_WATCH_SCHEDULE" yaml:"schedule"`
	SortBy   string `yaml:"sort_by"`
	Limit    int    `yaml:"limit"`
}

// MockConfig configures the local stub of the remote API.
type MockConfig struct {
	Addr          string        `env:"REELRANKER_MOCK_ADDR" yaml:"addr"`
	JWTSecret     string        `env:"REELRANKER_JWT_SECRET" yaml:"jwt_secret"`
	RatePerMinute int           `yaml:"rate_per_minute"`
	Latency       time.Duration `yaml:"latency"`
}

// Load reads path, applies defaults, then environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file is not an error.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

// NewDefault returns a config with every default applied and no overrides.
func NewDefault() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.Auth.LoginURL == "" {
		cfg.Auth.LoginURL = DefaultLoginURL
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = SessionBackendFile
	}
	if cfg.Session.Key == "" {
		cfg.Session.Key = DefaultSessionKey
	}
	if cfg.Session.File == "" {
		cfg.Session.File = defaultSessionPath()
	}
	if cfg.Session.Redis.Address == "" {
		cfg.Session.Redis.Address = DefaultRedisAddress
	}
	if cfg.Session.Redis.Prefix == "" {
		cfg.Session.Redis.Prefix = DefaultRedisPrefix
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	cfg.Logging.SetDefaults()

	if cfg.Watch.Schedule == "" {
		cfg.Watch.Schedule = DefaultWatchSchedule
	}
	if cfg.Watch.SortBy == "" {
		cfg.Watch.SortBy = "views"
	}
	if cfg.Watch.Limit == 0 {
		cfg.Watch.Limit = 20
	}

	if cfg.Mock.Addr == "" {
		cfg.Mock.Addr = DefaultMockAddr
	}
	if cfg.Mock.RatePerMinute == 0 {
		cfg.Mock.RatePerMinute = DefaultMockRate
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(defaultSessionDir, defaultSessionFile)
	}
	return filepath.Join(home, defaultSessionDir, defaultSessionFile)
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := ValidateURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendRedis, SessionBackendMemory:
	default:
		return &ValidationError{Field: "session.backend", Message: "must be one of: file, redis, memory"}
	}
	if err := ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if c.Mock.RatePerMinute < 0 {
		return &ValidationError{Field: "mock.rate_per_minute", Message: "must not be negative"}
	}
	return nil
}

// ValidateURL checks that value is an absolute http(s) URL.
func ValidateURL(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: field, Message: "must be an absolute http(s) URL"}
	}
	return nil
}
