package config

import (
	"errors"
	"fmt"
	"strings"
)

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks configuration invariants and returns actionable errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var errs []error
	if cfg.LogLevel != "" && !validLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level: unknown level %q, want debug, info, warn or error", cfg.LogLevel))
	}
	if strings.ContainsAny(cfg.Executable, "\r\n") {
		errs = append(errs, fmt.Errorf("executable: path %q contains a newline", cfg.Executable))
	}
	errs = append(errs, validateDuration("call_timeout", cfg.CallTimeout, true))
	errs = append(errs, validateDuration("hotkeys.keepalive_interval", cfg.Hotkeys.KeepaliveInterval, false))
	errs = append(errs, validateDuration("hotkeys.silence_timeout", cfg.Hotkeys.SilenceTimeout, true))
	errs = append(errs, validateDuration("hotkeys.stop_timeout", cfg.Hotkeys.StopTimeout, false))

	seen := make(map[string]bool, len(cfg.Extensions))
	for i, name := range cfg.Extensions {
		switch {
		case strings.TrimSpace(name) == "":
			errs = append(errs, fmt.Errorf("extensions[%d]: empty name", i))
		case seen[name]:
			errs = append(errs, fmt.Errorf("extensions[%d]: duplicate %q", i, name))
		}
		seen[name] = true
	}

	return errors.Join(errs...)
}

// ValidateForCurrentEnv checks config invariants after expanding ${ENV_VAR}
// placeholders against the current process environment.
func ValidateForCurrentEnv(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	expanded := cloneConfig(cfg)
	expandConfigEnvVars(expanded)
	return Validate(expanded)
}

func cloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	cloned.Extensions = append([]string(nil), cfg.Extensions...)
	return &cloned
}

func validateDuration(field, raw string, allowZero bool) error {
	if raw == "" {
		return nil
	}
	d, err := parseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return fmt.Errorf("%s: must be > 0, got %q", field, raw)
	}
	return nil
}
