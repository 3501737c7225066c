// Package config loads the form's settings from defaults, an optional config
// file, a .env file, the environment and command-line flags, in rising order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dshills/feedbackform/internal/logger"
	"github.com/dshills/feedbackform/internal/submit"
)

// ErrMissingEndpoint is returned when no endpoint is configured at all.
var ErrMissingEndpoint = errors.New("feedback endpoint is not configured")

// Config holds every setting of the CLI.
type Config struct {
	// Endpoint is the URL feedback records are posted to.
	Endpoint string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	// Timeout bounds one submission round-trip. Zero means no timeout.
	Timeout          time.Duration `mapstructure:"TIMEOUT" yaml:"timeout"`
	LogLevel         string        `mapstructure:"LOG_LEVEL" yaml:"log_level"`
	Environment      string        `mapstructure:"ENVIRONMENT" yaml:"environment"`
	StalePhoneMarker bool          `mapstructure:"STALE_PHONE_MARKER" yaml:"stale_phone_marker"`
}

// Options says where Load looks besides the environment.
type Options struct {
	// File is an optional config file (yaml, json or toml by extension).
	File string
	// EnvFile is a dotenv file. When empty, ".env" is tried and may be absent.
	EnvFile string
	// Flags, when set, override every other source for the flags the user
	// changed: endpoint, timeout, log-level, stale-phone-marker.
	Flags *pflag.FlagSet
}

// envBindings maps config keys to environment variables.
var envBindings = [][2]string{
	{"ENDPOINT", "FEEDBACK_ENDPOINT"},
	{"TIMEOUT", "FEEDBACK_TIMEOUT"},
	{"LOG_LEVEL", "LOG_LEVEL"},
	{"ENVIRONMENT", "ENVIRONMENT"},
	{"STALE_PHONE_MARKER", "FEEDBACK_STALE_PHONE_MARKER"},
}

// flagBindings maps config keys to flag names.
var flagBindings = [][2]string{
	{"ENDPOINT", "endpoint"},
	{"TIMEOUT", "timeout"},
	{"LOG_LEVEL", "log-level"},
	{"STALE_PHONE_MARKER", "stale-phone-marker"},
}

// Load resolves the configuration and validates it.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("ENDPOINT", submit.DefaultEndpoint)
	v.SetDefault("TIMEOUT", submit.DefaultTimeout)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("STALE_PHONE_MARKER", false)

	for _, b := range envBindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", opts.File, err)
		}
	}

	if opts.Flags != nil {
		for _, b := range flagBindings {
			f := opts.Flags.Lookup(b[1])
			if f == nil {
				continue
			}
			if err := v.BindPFlag(b[0], f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", b[1], err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger.Get().Debugw("configuration loaded",
		"endpoint", cfg.Endpoint,
		"timeout", cfg.Timeout,
		"environment", cfg.Environment,
		"stale_phone_marker", cfg.StalePhoneMarker,
	)
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %q: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an absolute http(s) URL", c.Endpoint)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	return nil
}
