package config

import "fmt"

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level    string         `yaml:"level"`  // debug, info, warn, error
	Format   string         `yaml:"format"` // text, json
	Dir      string         `yaml:"dir"`
	Rotation RotationConfig `yaml:"rotation"`
	Console  SinkConfig     `yaml:"console"`
	File     SinkConfig     `yaml:"file"`
}

// RotationConfig holds log rotation settings.
type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"` // MB
	MaxBackups int  `yaml:"max_backups"`
	MaxAge     int  `yaml:"max_age"` // days
	Compress   bool `yaml:"compress"`
}

// SinkConfig configures one output sink. Level and Format fall back to the
// top-level values when empty.
type SinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// DefaultLoggingConfig returns console-plus-file logging at info level.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "text",
		Dir:    "logs",
		Rotation: RotationConfig{
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		},
		Console: SinkConfig{Enabled: true},
		File:    SinkConfig{Enabled: true},
	}
}

// ApplyDefaults fills in missing values.
func (c *LoggingConfig) ApplyDefaults() {
	def := DefaultLoggingConfig()
	if c.Level == "" {
		c.Level = def.Level
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.Dir == "" {
		c.Dir = def.Dir
	}
	if c.Rotation.MaxSize == 0 {
		c.Rotation.MaxSize = def.Rotation.MaxSize
	}
	if c.Rotation.MaxBackups == 0 {
		c.Rotation.MaxBackups = def.Rotation.MaxBackups
	}
	if c.Rotation.MaxAge == 0 {
		c.Rotation.MaxAge = def.Rotation.MaxAge
	}
	if c.Console.Level == "" {
		c.Console.Level = c.Level
	}
	if c.Console.Format == "" {
		c.Console.Format = c.Format
	}
	if c.File.Level == "" {
		c.File.Level = c.Level
	}
	if c.File.Format == "" {
		c.File.Format = c.Format
	}
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"text": true, "json": true}
)

// Validate checks levels, formats and the log directory.
func (c *LoggingConfig) Validate() error {
	if !validLevels[c.Level] {
		return fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", c.Level)
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid log format %q (must be text or json)", c.Format)
	}
	if c.File.Enabled && c.Dir == "" {
		return fmt.Errorf("log directory is required when file logging is enabled")
	}
	for _, sink := range []SinkConfig{c.Console, c.File} {
		if !sink.Enabled {
			continue
		}
		if sink.Level != "" && !validLevels[sink.Level] {
			return fmt.Errorf("invalid sink log level %q", sink.Level)
		}
		if sink.Format != "" && !validFormats[sink.Format] {
			return fmt.Errorf("invalid sink log format %q", sink.Format)
		}
	}
	return nil
}
