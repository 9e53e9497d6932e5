package config

import (
	"strings"
	"testing"
)

func TestValidateAcceptsDefaultsAndValidValues(t *testing.T) {
	for _, cfg := range []*Config{
		{},
		{
			LogLevel:    "WARN",
			CallTimeout: "0",
			Extensions:  []string{"ocr"},
			Hotkeys:     HotkeysConfig{KeepaliveInterval: "500ms", SilenceTimeout: "0", StopTimeout: "1s"},
		},
	} {
		if err := Validate(cfg); err != nil {
			t.Fatalf("Validate(%+v) error = %v, want nil", cfg, err)
		}
	}
}

func TestValidateJoinsEveryProblem(t *testing.T) {
	cfg := &Config{
		LogLevel:    "loud",
		CallTimeout: "soon",
		Extensions:  []string{"a", "a", " "},
		Hotkeys:     HotkeysConfig{KeepaliveInterval: "0", StopTimeout: "-1s"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() error = nil, want non-nil")
	}

	msg := err.Error()
	for _, want := range []string{
		`log_level: unknown level "loud"`,
		`call_timeout: invalid duration "soon"`,
		`hotkeys.keepalive_interval: must be > 0`,
		`hotkeys.stop_timeout: must be > 0`,
		`extensions[1]: duplicate "a"`,
		`extensions[2]: empty name`,
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("Validate() error = %q, want %q", msg, want)
		}
	}
}

func TestValidateForCurrentEnvExpandsWithoutMutatingSource(t *testing.T) {
	t.Setenv("AHKX_TIMEOUT", "15s")

	cfg := &Config{CallTimeout: "${AHKX_TIMEOUT}"}

	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() error = nil, want non-nil for raw placeholder")
	}
	if err := ValidateForCurrentEnv(cfg); err != nil {
		t.Fatalf("ValidateForCurrentEnv() error = %v, want nil", err)
	}
	if cfg.CallTimeout != "${AHKX_TIMEOUT}" {
		t.Fatalf("source call_timeout mutated to %q", cfg.CallTimeout)
	}
}
