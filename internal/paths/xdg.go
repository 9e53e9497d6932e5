package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "ahkx"

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

func xdgDir(envVar, windowsVar, fallbackSuffix string) string {
	if v := os.Getenv(envVar); v != "" {
		return filepath.Join(v, appName)
	}
	if runtime.GOOS == "windows" {
		if v := os.Getenv(windowsVar); v != "" {
			return filepath.Join(v, appName)
		}
	}
	return filepath.Join(homeDir(), fallbackSuffix, appName)
}

// ConfigDir returns the ahkx config directory ($XDG_CONFIG_HOME/ahkx, or
// %APPDATA%\ahkx on Windows).
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", "APPDATA", ".config")
}

// StateDir returns the ahkx state directory ($XDG_STATE_HOME/ahkx, or
// %LOCALAPPDATA%\ahkx on Windows).
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", "LOCALAPPDATA", filepath.Join(".local", "state"))
}

// RuntimeDir returns the parent of the per-run scratch directories.
// Falls back to the system temp directory if XDG_RUNTIME_DIR is unset.
func RuntimeDir() string {
	if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
		return filepath.Join(v, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

// ConfigFile returns the path to config.toml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// HistoryFile returns the path to the repl history.
func HistoryFile() string {
	return filepath.Join(StateDir(), "repl_history")
}

// RunDir returns the scratch directory for the run with the given id.
func RunDir(id string) string {
	return filepath.Join(RuntimeDir(), "run-"+id)
}

// EnsureDir creates a directory and parents if needed.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
