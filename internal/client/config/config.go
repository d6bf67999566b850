package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CONOPS"

// Config holds process configuration for the CLI. Environment variable
// names derive from the field path, e.g. Log.MaxSizeMB is read from
// CONOPS_LOG_MAX_SIZE_MB.
type Config struct {
	DBPath string       `json:"db_path" yaml:"db_path" split_words:"true"`
	Log    LogConfig    `json:"log" yaml:"log" split_words:"true"`
	Server ServerConfig `json:"server" yaml:"server" split_words:"true"`
	Stream StreamConfig `json:"stream" yaml:"stream" split_words:"true"`
	// RequestTimeout bounds ordinary API calls. Zero, the default, applies
	// none; the event stream never has one.
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout" split_words:"true"`
	// MetricsAddr, when set, makes long-running commands serve /metrics.
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr" split_words:"true"`
}

type LogConfig struct {
	Level      string `json:"level" yaml:"level" split_words:"true"`
	Format     string `json:"format" yaml:"format" split_words:"true"`
	File       string `json:"file" yaml:"file" split_words:"true"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" split_words:"true"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" split_words:"true"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" split_words:"true"`
}

// ServerConfig overrides persisted server settings. Nil means "keep what
// is stored".
type ServerConfig struct {
	Host *string `json:"host,omitempty" yaml:"host,omitempty" split_words:"true"`
	Port *int    `json:"port,omitempty" yaml:"port,omitempty" split_words:"true"`
	TLS  *bool   `json:"tls,omitempty" yaml:"tls,omitempty" split_words:"true"`
}

// Empty reports whether no override is set.
func (s ServerConfig) Empty() bool {
	return s.Host == nil && s.Port == nil && s.TLS == nil
}

type StreamConfig struct {
	RetryDelay Duration `json:"retry_delay" yaml:"retry_delay" split_words:"true"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		DBPath: defaultDBPath(),
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Stream: StreamConfig{RetryDelay: Duration{3 * time.Second}},
	}
}

func defaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "conops.db"
	}
	return filepath.Join(dir, "conops", "cache.db")
}

// DefaultFile is the config file read when no path is given, if it exists.
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "conops", "config.yaml")
}

// Load builds the configuration from every source in precedence order. fs
// may be nil; otherwise it must carry the flags registered by BindFlags and
// be parsed already.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Defaults()

	path, explicit := configPath(fs)
	if path != "" {
		if err := loadFile(cfg, path, explicit); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configPath resolves the config file. explicit is false for the default
// location, which may be absent.
func configPath(fs *pflag.FlagSet) (path string, explicit bool) {
	if fs != nil && fs.Changed(FlagConfig) {
		if p, err := fs.GetString(FlagConfig); err == nil && p != "" {
			return p, true
		}
	}
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p, true
	}
	return DefaultFile(), false
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path must not be empty")
	}
	if c.Server.Port != nil && (*c.Server.Port < 1 || *c.Server.Port > 65535) {
		return fmt.Errorf("server port %d out of range", *c.Server.Port)
	}
	if c.Stream.RetryDelay.Duration <= 0 {
		return fmt.Errorf("stream retry delay must be positive")
	}
	if c.RequestTimeout.Duration < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	return nil
}
