// Package bootstrap locates the interpreter and renders the daemon script it
// runs.
package bootstrap

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/lydakis/ahkx/internal/message"
)

// InterpreterArgs returns the command-line arguments that run script.
func InterpreterArgs(script string) []string {
	return []string{"/CP65001", "/ErrorStdOut", script}
}

//go:embed templates/daemon.ahk.tmpl
var daemonTemplateText string

var daemonTemplate = template.Must(template.New("daemon.ahk").Parse(daemonTemplateText))

// DaemonScript is the input to RenderDaemon.
type DaemonScript struct {
	// Kinds defaults to every kind of message.Default.
	Kinds []*message.Kind
	// Includes are emitted as #Include lines, in order.
	Includes []string
	// Fragments are appended verbatim after the built-in handlers.
	Fragments []string
}

// RenderDaemon renders the daemon bootstrap script.
func RenderDaemon(s DaemonScript) ([]byte, error) {
	if s.Kinds == nil {
		s.Kinds = message.Default.Kinds()
	}
	var buf bytes.Buffer
	if err := daemonTemplate.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("rendering daemon script: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteScript writes content to a new file in dir whose name follows
// pattern (see os.CreateTemp) and returns its path.
func WriteScript(dir, pattern string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating script directory %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating script file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("writing script %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("closing script %s: %w", path, err)
	}
	return filepath.Clean(path), nil
}
