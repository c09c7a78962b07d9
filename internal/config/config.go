// Package config loads settings from defaults, an optional TOML file,
// KISHEKA_* environment variables and bound CLI flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "KISHEKA"

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Recalc   RecalcConfig   `mapstructure:"recalc"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecalcConfig struct {
	// Concurrency caps parallel phase recalculations per project.
	Concurrency int `mapstructure:"concurrency"`
	// MaxRetries bounds retries of a recalculation that lost a version race.
	MaxRetries int `mapstructure:"max_retries"`
}

type OutboxConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BatchSize   int `mapstructure:"batch_size"`
}

// DefaultDir returns ~/.kisheka, falling back to the working directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kisheka"
	}
	return filepath.Join(home, ".kisheka")
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(DefaultDir(), "kisheka.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("recalc.concurrency", 4)
	v.SetDefault("recalc.max_retries", 3)
	v.SetDefault("outbox.max_attempts", 5)
	v.SetDefault("outbox.batch_size", 100)
}

// Load resolves configuration on v. cfgFile may be empty, in which case
// config.toml is looked up in DefaultDir and a missing file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Recalc.Concurrency < 1 {
		return fmt.Errorf("recalc.concurrency must be at least 1, got %d", c.Recalc.Concurrency)
	}
	if c.Recalc.MaxRetries < 1 {
		return fmt.Errorf("recalc.max_retries must be at least 1, got %d", c.Recalc.MaxRetries)
	}
	if c.Outbox.MaxAttempts < 1 {
		return fmt.Errorf("outbox.max_attempts must be at least 1, got %d", c.Outbox.MaxAttempts)
	}
	if c.Outbox.BatchSize < 1 {
		return fmt.Errorf("outbox.batch_size must be at least 1, got %d", c.Outbox.BatchSize)
	}
	return nil
}
