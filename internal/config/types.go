package config

import (
	"strings"
	"time"
)

// Config is the top-level ahkx configuration.
type Config struct {
	// Executable is an explicit interpreter path. Empty means resolve.
	Executable string `toml:"executable,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level,omitempty"`
	// CallTimeout bounds each daemon call. "0" disables the deadline.
	CallTimeout string `toml:"call_timeout,omitempty"`
	// Transcript is an optional path that receives every request/response
	// pair.
	Transcript string `toml:"transcript,omitempty"`
	// Extensions selects registered extensions by name. Unset means all.
	// The ahkx binary registers none, so only embedding programs can name any.
	Extensions []string `toml:"extensions,omitempty"`

	Hotkeys HotkeysConfig `toml:"hotkeys"`
}

// HotkeysConfig tunes the hotkey interpreter.
type HotkeysConfig struct {
	KeepaliveInterval string `toml:"keepalive_interval,omitempty"`
	SilenceTimeout    string `toml:"silence_timeout,omitempty"`
	StopTimeout       string `toml:"stop_timeout,omitempty"`
}

const (
	DefaultLogLevel          = "info"
	DefaultCallTimeout       = 30 * time.Second
	DefaultKeepaliveInterval = time.Second
	DefaultSilenceTimeout    = 10 * time.Second
	DefaultStopTimeout       = 5 * time.Second
)

// CallTimeoutDuration returns the parsed call timeout, or the default when
// unset. Call Validate first; unparseable values also yield the default.
func (c *Config) CallTimeoutDuration() time.Duration {
	return durationOr(c.CallTimeout, DefaultCallTimeout)
}

// KeepaliveIntervalDuration returns the parsed keepalive interval.
func (h HotkeysConfig) KeepaliveIntervalDuration() time.Duration {
	return durationOr(h.KeepaliveInterval, DefaultKeepaliveInterval)
}

// SilenceTimeoutDuration returns the parsed silence timeout. Zero disables
// the watchdog.
func (h HotkeysConfig) SilenceTimeoutDuration() time.Duration {
	return durationOr(h.SilenceTimeout, DefaultSilenceTimeout)
}

// StopTimeoutDuration returns the parsed stop timeout.
func (h HotkeysConfig) StopTimeoutDuration() time.Duration {
	return durationOr(h.StopTimeout, DefaultStopTimeout)
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return strings.ToLower(c.LogLevel)
}

func durationOr(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := parseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// parseDuration accepts Go durations and a bare "0".
func parseDuration(raw string) (time.Duration, error) {
	if raw == "0" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
