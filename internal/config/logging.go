package config

import (
	"fmt"
	"log/slog"

	"github.com/incontext-app/incontext/pkg/logging"
)

const (
	// EnvLoggingLevel overrides the minimum log level.
	EnvLoggingLevel = "LOGGING_LEVEL"

	// EnvLoggingFormat overrides the log output format.
	EnvLoggingFormat = "LOGGING_FORMAT"
)

var slogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LoggingConfig contains log output configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Options resolves the configuration into logger options.
func (c *LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level: slogLevels[c.Level],
		JSON:  c.Format == "json",
	}
}

// Finalize applies defaults, loads environment overrides, and validates the logging configuration.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c *LoggingConfig) loadEnv() {
	envString(EnvLoggingLevel, &c.Level)
	envString(EnvLoggingFormat, &c.Format)
}

func (c *LoggingConfig) validate() error {
	if _, ok := slogLevels[c.Level]; !ok {
		return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", c.Level)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format: %s (must be text or json)", c.Format)
	}
	return nil
}
