package config

import (
	"fmt"
	"time"

	"bookstand/pkg/types"
)

// Config holds cache backend settings. The operation timeout is deliberately
// much shorter than the store's: a slow cache must degrade latency, not
// stall requests.
type Config struct {
	Enabled       bool           `yaml:"enabled"`
	Addr          string         `yaml:"addr"`
	Password      string         `yaml:"password"`
	DB            int            `yaml:"db"`
	TTL           types.Duration `yaml:"ttl"`
	OpTimeout     types.Duration `yaml:"op_timeout"`
	ProbeInterval types.Duration `yaml:"probe_interval"`
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Addr:          "localhost:6379",
		TTL:           types.Duration(3600 * time.Second),
		OpTimeout:     types.Duration(250 * time.Millisecond),
		ProbeInterval: types.Duration(30 * time.Second),
	}
}

// ApplyDefaults fills in missing values with defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.TTL == 0 {
		c.TTL = d.TTL
	}
	if c.OpTimeout == 0 {
		c.OpTimeout = d.OpTimeout
	}
	if c.ProbeInterval == 0 {
		c.ProbeInterval = d.ProbeInterval
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("cache addr cannot be empty when enabled")
	}
	if c.TTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	return nil
}
