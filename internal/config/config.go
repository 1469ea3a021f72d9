// Package config provides configuration management for the copy-trading engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Poller  PollerConfig  `mapstructure:"poller"`
	Copy    CopyConfig    `mapstructure:"copy"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
}

// PollerConfig holds trade feed polling configuration.
type PollerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	BackoffInitial time.Duration `mapstructure:"backoff_initial"`
	BackoffMax     time.Duration `mapstructure:"backoff_max"`
	FetchLimit     int           `mapstructure:"fetch_limit"`
	RecencySetSize int           `mapstructure:"recency_set_size"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests/sec against the history source
	RateBurst      int           `mapstructure:"rate_burst"`
}

// CopyConfig holds default follow configuration values. Individual follows
// override these at creation time.
type CopyConfig struct {
	MaxPositionSize    float64 `mapstructure:"max_position_size"`
	CopyPercentage     float64 `mapstructure:"copy_percentage"`
	MaxTotalExposure   float64 `mapstructure:"max_total_exposure"`
	MinTradeConfidence float64 `mapstructure:"min_trade_confidence"`
	AutoExit           bool    `mapstructure:"auto_exit"`
}

// ScoringConfig holds trader scoring configuration.
type ScoringConfig struct {
	DefaultLookbackDays int     `mapstructure:"default_lookback_days"`
	WhaleThreshold      float64 `mapstructure:"whale_threshold"`
}

// SafetyConfig holds hard safety limits.
type SafetyConfig struct {
	// MaxConsecutiveFailures stops a follow outright after this many
	// execution failures in a row.
	MaxConsecutiveFailures int `mapstructure:"max_consecutive_failures"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/copytrader"
	}
	return filepath.Join(home, ".config", "copytrader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Missing file is fine; defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("poller.interval", 30*time.Second)
	v.SetDefault("poller.backoff_initial", 2*time.Second)
	v.SetDefault("poller.backoff_max", 5*time.Minute)
	v.SetDefault("poller.fetch_limit", 50)
	v.SetDefault("poller.recency_set_size", 512)
	v.SetDefault("poller.rate_limit", 5.0)
	v.SetDefault("poller.rate_burst", 10)

	v.SetDefault("copy.max_position_size", 100.0)
	v.SetDefault("copy.copy_percentage", 10.0)
	v.SetDefault("copy.max_total_exposure", 1000.0)
	v.SetDefault("copy.min_trade_confidence", 10.0)
	v.SetDefault("copy.auto_exit", true)

	v.SetDefault("scoring.default_lookback_days", 30)
	v.SetDefault("scoring.whale_threshold", 10000.0)

	v.SetDefault("safety.max_consecutive_failures", 5)

	v.SetDefault("store.path", filepath.Join(DefaultConfigDir(), "copytrader.db"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)
	v.SetDefault("log.path", filepath.Join(DefaultConfigDir(), "logs", "copytrader.log"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COPYTRADER_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("COPYTRADER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Poller.Interval <= 0 {
		return fmt.Errorf("poller interval must be positive")
	}
	if c.Poller.BackoffInitial <= 0 || c.Poller.BackoffMax < c.Poller.BackoffInitial {
		return fmt.Errorf("poller backoff bounds invalid")
	}
	if c.Poller.RecencySetSize <= 0 {
		return fmt.Errorf("recency_set_size must be positive")
	}
	if c.Copy.CopyPercentage <= 0 || c.Copy.CopyPercentage > 100 {
		return fmt.Errorf("copy_percentage must be in (0, 100]")
	}
	if c.Copy.MaxTotalExposure <= 0 {
		return fmt.Errorf("max_total_exposure must be positive")
	}
	if c.Scoring.DefaultLookbackDays <= 0 {
		return fmt.Errorf("default_lookback_days must be positive")
	}
	if c.Safety.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("max_consecutive_failures must be positive")
	}
	return nil
}
