package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lydakis/ahkx/internal/paths"
)

// Save persists cfg to the ahkx config file, typically after `ahkx resolve
// --save` has pinned the interpreter path.
func Save(cfg *Config) error {
	return SaveTo(paths.ConfigFile(), cfg)
}

// SaveTo encodes cfg as TOML and swaps it into place at path through a
// sibling temp file, so a reader never sees a half-written file. The file
// is private to the user.
func SaveTo(path string, cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding ahkx config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ahkx-config-*.toml")
	if err != nil {
		return fmt.Errorf("staging ahkx config: %w", err)
	}
	staged := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(staged)
		}
	}()

	if err := writeStaged(tmp, buf.Bytes()); err != nil {
		return fmt.Errorf("staging ahkx config %s: %w", staged, err)
	}
	if err := os.Rename(staged, path); err != nil {
		return fmt.Errorf("installing ahkx config %s: %w", path, err)
	}
	keep = true
	return nil
}

// writeStaged fills f, flushes it to disk and closes it.
func writeStaged(f *os.File, data []byte) error {
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
