package config

import (
	"fmt"
	"time"

	"bookstand/pkg/types"
)

// Config holds search index settings. Probe and operation timeouts stay
// short so an unhealthy index degrades to store queries instead of
// stalling requests.
type Config struct {
	Enabled      bool           `yaml:"enabled"`
	Addresses    []string       `yaml:"addresses"`
	Username     string         `yaml:"username"`
	Password     string         `yaml:"password"`
	IndexPrefix  string         `yaml:"index_prefix"`
	ProbeTimeout types.Duration `yaml:"probe_timeout"`
	OpTimeout    types.Duration `yaml:"op_timeout"`
}

// DefaultConfig returns default search configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Addresses:    []string{"http://localhost:9200"},
		ProbeTimeout: types.Duration(1 * time.Second),
		OpTimeout:    types.Duration(2 * time.Second),
	}
}

// ApplyDefaults fills in missing values with defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if len(c.Addresses) == 0 {
		c.Addresses = d.Addresses
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = d.ProbeTimeout
	}
	if c.OpTimeout == 0 {
		c.OpTimeout = d.OpTimeout
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Enabled && len(c.Addresses) == 0 {
		return fmt.Errorf("search addresses cannot be empty when enabled")
	}
	return nil
}
