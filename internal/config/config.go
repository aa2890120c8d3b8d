// Package config assembles the application configuration: defaults,
// overridden by config/config.yml, overridden by config/config.local.yml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	cache "bookstand/internal/cache/config"
	events "bookstand/internal/events/config"
	search "bookstand/internal/search/config"
	storage "bookstand/internal/storage/config"
)

// Config holds the application configuration.
type Config struct {
	Storage storage.Config `yaml:"storage"`
	Cache   cache.Config   `yaml:"cache"`
	Search  search.Config  `yaml:"search"`
	Events  events.Config  `yaml:"events"`
	Logging LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration with every component at its defaults.
func Default() *Config {
	return &Config{
		Storage: storage.DefaultConfig(),
		Cache:   cache.DefaultConfig(),
		Search:  search.DefaultConfig(),
		Events:  events.DefaultConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// Load reads the configuration files, fills gaps with defaults and
// validates the result. Missing files are fine; unreadable ones are not.
func Load() (*Config, error) {
	cfg := Default()

	for _, name := range []string{"config/config.yml", "config/config.local.yml"} {
		if err := loadFile(name, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Storage.ApplyDefaults()
	cfg.Cache.ApplyDefaults()
	cfg.Search.ApplyDefaults()
	cfg.Events.ApplyDefaults()
	cfg.Logging.ApplyDefaults()

	if err := cfg.Storage.Validate(); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	if err := cfg.Search.Validate(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if err := cfg.Events.Validate(); err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	return cfg, nil
}

func loadFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	return nil
}
