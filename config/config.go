package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brunoscheufler/pim/constants"
	"github.com/brunoscheufler/pim/store"
	"github.com/brunoscheufler/pim/telemetry"
	"github.com/spf13/viper"
)

// Config holds all configuration parameters for running the application
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	Backend  string `mapstructure:"backend"`
	Database string `mapstructure:"database"`
	Theme    string `mapstructure:"theme"`
	LogLevel string `mapstructure:"log_level"`
	// BirthdayDays prefills the birthday window prompt.
	BirthdayDays int `mapstructure:"birthday_days"`
	// Seed fills empty collections with this many generated records.
	Seed int `mapstructure:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:      constants.DefaultDataDir,
		Backend:      constants.DefaultBackend,
		Database:     constants.DefaultDatabase,
		Theme:        constants.DefaultTheme,
		LogLevel:     constants.DefaultLogLevel,
		BirthdayDays: constants.DefaultBirthdayDays,
	}
}

// Load reads defaults, then the config file, then PIM_* environment
// variables. An empty path searches for pim.yaml in the working directory
// and the user config directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("database", defaults.Database)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("birthday_days", defaults.BirthdayDays)
	v.SetDefault("seed", defaults.Seed)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := userConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("PIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: could not read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: could not decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func userConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pim"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pim"), nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if _, err := store.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("config: theme %q must be dark or light", c.Theme)
	}
	if _, err := telemetry.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.BirthdayDays < 0 {
		return fmt.Errorf("config: birthday_days must not be negative")
	}
	if c.Seed < 0 || c.Seed > constants.MaxSeedRecords {
		return fmt.Errorf("config: seed must be between 0 and %d", constants.MaxSeedRecords)
	}
	return nil
}

// StoreOptions translates the configuration into store options.
func (c *Config) StoreOptions() store.StoreOptions {
	backend, _ := store.ParseBackend(c.Backend)

	opts := store.DefaultStoreOptions(c.DataDir)
	opts.Backend = backend
	opts.Name = c.Database
	return opts
}
