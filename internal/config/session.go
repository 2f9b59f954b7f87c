package config

import (
	"fmt"
	"os"
	"time"
)

const (
	// EnvSessionCookie overrides the session cookie name.
	EnvSessionCookie = "SESSION_COOKIE"

	// EnvSessionTTL overrides the session lifetime.
	EnvSessionTTL = "SESSION_TTL"
)

// SessionConfig contains login session configuration.
type SessionConfig struct {
	Cookie string `toml:"cookie"`
	TTL    string `toml:"ttl"`
}

// TTLDuration parses and returns the session lifetime as a time.Duration.
func (c *SessionConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the session configuration.
func (c *SessionConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *SessionConfig) Merge(overlay *SessionConfig) {
	if overlay.Cookie != "" {
		c.Cookie = overlay.Cookie
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
}

func (c *SessionConfig) loadDefaults() {
	if c.Cookie == "" {
		c.Cookie = "incontext_session"
	}
	if c.TTL == "" {
		c.TTL = "168h"
	}
}

func (c *SessionConfig) loadEnv() {
	if v := os.Getenv(EnvSessionCookie); v != "" {
		c.Cookie = v
	}
	if v := os.Getenv(EnvSessionTTL); v != "" {
		c.TTL = v
	}
}

func (c *SessionConfig) validate() error {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}
