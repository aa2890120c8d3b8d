package config

import (
	"fmt"
	"time"

	"bookstand/pkg/types"
)

// Config holds document store settings.
type Config struct {
	URI            string         `yaml:"uri"`
	Database       string         `yaml:"database"`
	ConnectTimeout types.Duration `yaml:"connect_timeout"`
}

// DefaultConfig returns default storage configuration.
func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "bookstand",
		ConnectTimeout: types.Duration(10 * time.Second),
	}
}

// ApplyDefaults fills in missing values with defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.URI == "" {
		c.URI = d.URI
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("storage uri cannot be empty")
	}
	if c.Database == "" {
		return fmt.Errorf("storage database cannot be empty")
	}
	return nil
}
