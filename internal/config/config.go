package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/aretw0/aidbuddy/internal/logging"
	"github.com/aretw0/aidbuddy/pkg/persistence/middleware"
)

// Prefix is prepended to every environment variable, e.g. AIDBUDDY_ADDR.
const Prefix = "AIDBUDDY"

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the process configuration, sourced from the environment.
type Config struct {
	Addr      string `envconfig:"ADDR" default:":8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	Store           string        `envconfig:"STORE" default:"memory"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	SessionCapacity int           `envconfig:"SESSION_CAPACITY" default:"10000"`
	Redis           RedisConfig
	Encryption      EncryptionConfig

	AwardYearsFile string `envconfig:"AWARD_YEARS_FILE"`
	MaxInputSize   int    `envconfig:"MAX_INPUT_SIZE" default:"4096"`

	Scorecard ScorecardConfig

	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"false"`
}

// RedisConfig is read from AIDBUDDY_REDIS_*.
type RedisConfig struct {
	URL     string        `envconfig:"URL"`
	Prefix  string        `envconfig:"PREFIX" default:"aidbuddy:session:"`
	LockTTL time.Duration `envconfig:"LOCK_TTL" default:"30s"`
}

// EncryptionConfig is read from AIDBUDDY_ENCRYPTION_*. Keys are base64
// encoded AES-256 keys; an empty Key stores answers in plaintext.
type EncryptionConfig struct {
	Key          string   `envconfig:"KEY"`
	FallbackKeys []string `envconfig:"FALLBACK_KEYS"`
}

// Enabled reports whether answers are sealed at rest.
func (e EncryptionConfig) Enabled() bool { return e.Key != "" }

// Keys decodes the configured keys.
func (e EncryptionConfig) Keys() (middleware.EncryptionConfig, error) {
	return middleware.ParseKeys(e.Key, e.FallbackKeys...)
}

// ScorecardConfig is read from AIDBUDDY_SCORECARD_*.
type ScorecardConfig struct {
	APIKey  string        `envconfig:"API_KEY"`
	URL     string        `envconfig:"URL" default:"https://api.data.gov/ed/collegescorecard/v1/schools"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"15s"`
}

// Load reads the given dotenv files (missing files are skipped; variables
// already set in the environment win) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}
	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, fmt.Errorf("%s_REDIS_URL is required when %s_STORE=redis", Prefix, Prefix))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if c.Encryption.Enabled() {
		if _, err := c.Encryption.Keys(); err != nil {
			errs = append(errs, fmt.Errorf("encryption: %w", err))
		}
	} else if len(c.Encryption.FallbackKeys) > 0 {
		errs = append(errs, fmt.Errorf("%s_ENCRYPTION_FALLBACK_KEYS requires %s_ENCRYPTION_KEY", Prefix, Prefix))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive"))
	}
	if c.SessionCapacity <= 0 {
		errs = append(errs, fmt.Errorf("session capacity must be positive"))
	}
	if c.MaxInputSize <= 0 {
		errs = append(errs, fmt.Errorf("max input size must be positive"))
	}
	return errors.Join(errs...)
}

// Logger builds the application logger from LogLevel and LogFormat.
func (c *Config) Logger() *slog.Logger {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level, strings.ToLower(c.LogFormat))
}
