// Package config holds the change-event bus configuration.
package config

import "fmt"

const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Config selects and tunes the event bus backend.
type Config struct {
	Backend       string `yaml:"backend"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// DefaultConfig returns the in-memory backend, suitable for single-process
// deployments and tests.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendMemory,
		URL:           "nats://localhost:4222",
		SubjectPrefix: "bookstand",
	}
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.URL == "" {
		c.URL = def.URL
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = def.SubjectPrefix
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendNATS:
	default:
		return fmt.Errorf("unknown events backend %q", c.Backend)
	}
	if c.Backend == BackendNATS && c.URL == "" {
		return fmt.Errorf("events url is required for the nats backend")
	}
	return nil
}
