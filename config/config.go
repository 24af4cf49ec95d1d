// Package config loads the engine's runtime configuration: where its
// data lives on disk, whether writes fsync before the atomic rename,
// and the VARCHAR length ceiling new tables are held to.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the settings an Engine is opened with.
type Config struct {
	DataDir     string `mapstructure:"data_dir"`
	Sync        bool   `mapstructure:"sync"`
	MaxVarchar  int    `mapstructure:"max_varchar"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// Default returns the configuration used when no file or override is
// present: data under ./lattice-data, fsync on every write, a generous
// VARCHAR ceiling, and console logging at info level.
func Default() *Config {
	return &Config{
		DataDir:    "./lattice-data",
		Sync:       true,
		MaxVarchar: 65535,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load reads configuration from path (a YAML file) if it exists,
// falling back to defaults, then applies LATTICE_-prefixed environment
// variable overrides on top.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("sync", def.Sync)
	v.SetDefault("max_varchar", def.MaxVarchar)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)

	v.SetEnvPrefix("LATTICE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the rest of the engine can't act on.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.MaxVarchar <= 0 {
		return fmt.Errorf("max_varchar must be positive")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("log_format must be one of: console, json")
	}
	return nil
}

// EnsureDataDir creates the configured data directory if absent.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", c.DataDir, err)
	}
	return nil
}

// AbsDataDir resolves DataDir to an absolute path.
func (c *Config) AbsDataDir() (string, error) {
	return filepath.Abs(c.DataDir)
}
