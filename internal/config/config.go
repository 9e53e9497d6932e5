package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/lydakis/ahkx/internal/paths"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads the config file and returns the parsed Config.
// If the config file does not exist, it returns an empty Config (no error).
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadForEdit reads the config file for in-place edits.
// Unlike Load, it preserves raw ${ENV_VAR} placeholders.
func LoadForEdit() (*Config, error) {
	return LoadForEditFrom(paths.ConfigFile())
}

// LoadFrom reads and parses a config file at the given path.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path, true)
}

// LoadForEditFrom reads and parses a config file at the given path for edits.
// It skips env expansion so writes keep the placeholders.
func LoadForEditFrom(path string) (*Config, error) {
	return loadFrom(path, false)
}

func loadFrom(path string, expand bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if expand {
		expandConfigEnvVars(&cfg)
	}
	return &cfg, nil
}

// ExampleConfigPath returns the default config file path (for help messages).
func ExampleConfigPath() string {
	return paths.ConfigFile()
}

func expandConfigEnvVars(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Executable = expandEnvVars(cfg.Executable)
	cfg.LogLevel = expandEnvVars(cfg.LogLevel)
	cfg.CallTimeout = expandEnvVars(cfg.CallTimeout)
	cfg.Transcript = expandEnvVars(cfg.Transcript)
	for i := range cfg.Extensions {
		cfg.Extensions[i] = expandEnvVars(cfg.Extensions[i])
	}
	cfg.Hotkeys.KeepaliveInterval = expandEnvVars(cfg.Hotkeys.KeepaliveInterval)
	cfg.Hotkeys.SilenceTimeout = expandEnvVars(cfg.Hotkeys.SilenceTimeout)
	cfg.Hotkeys.StopTimeout = expandEnvVars(cfg.Hotkeys.StopTimeout)
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match // leave unresolved vars as-is
	})
}
