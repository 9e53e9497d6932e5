package bootstrap

import (
	"os/exec"
	"strings"
)

type lookupPathFunc func(file string) (string, error)

var lookPathFn lookupPathFunc = exec.LookPath

// DefaultCandidates are interpreter basenames searched on PATH, most specific
// build first.
var DefaultCandidates = []string{
	"AutoHotkey.exe",
	"AutoHotkeyU64.exe",
	"AutoHotkeyU32.exe",
	"AutoHotkeyA32.exe",
	"AutoHotkey64.exe",
}

// DefaultInstallPaths are checked after PATH.
var DefaultInstallPaths = []string{
	`C:\Program Files\AutoHotkey\AutoHotkey.exe`,
	`C:\Program Files\AutoHotkey\AutoHotkeyU64.exe`,
}

// EnvExecutable names the environment variable holding an interpreter path.
const EnvExecutable = "AHK_PATH"

func firstOnPath(candidates []string, lookup lookupPathFunc) (string, bool) {
	if lookup == nil {
		lookup = exec.LookPath
	}
	for _, name := range candidates {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if path, err := lookup(name); err == nil {
			return path, true
		}
	}
	return "", false
}

func trimBalancedQuotes(token string) string {
	if len(token) < 2 {
		return token
	}
	start := token[0]
	end := token[len(token)-1]
	if (start == '\'' && end == '\'') || (start == '"' && end == '"') {
		return token[1 : len(token)-1]
	}
	return token
}
