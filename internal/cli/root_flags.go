package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
)

var (
	rootStdin    io.Reader = os.Stdin
	rootStdout   io.Writer = os.Stdout
	rootStderr   io.Writer = os.Stderr
	buildVersion           = "dev"
)

func init() {
	buildVersion = resolveBuildVersion(buildVersion)
}

type rootOptions struct {
	verbose    bool
	configPath string
}

func handleRootFlags(args []string) (bool, int) {
	if len(args) != 1 {
		return false, 0
	}

	switch args[0] {
	case "--version", "-V":
		fmt.Fprintf(rootStdout, "ahkx %s\n", buildVersion)
		return true, ExitOK
	case "--help", "-h":
		printRootHelp(rootStdout)
		return true, ExitOK
	default:
		return false, 0
	}
}

// parseRootOptions consumes the global flags in front of the subcommand.
func parseRootOptions(args []string) (rootOptions, []string, error) {
	var opts rootOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			opts.verbose = true
		case arg == "--config":
			if i+1 >= len(args) {
				return rootOptions{}, nil, fmt.Errorf("missing value for --config")
			}
			i++
			opts.configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			opts.configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--":
			return opts, args[i+1:], nil
		case len(arg) > 1 && strings.HasPrefix(arg, "-"):
			return rootOptions{}, nil, fmt.Errorf("unknown flag: %s", arg)
		default:
			return opts, args[i:], nil
		}
	}
	return opts, nil, nil
}

func resolveBuildVersion(defaultVersion string) string {
	if defaultVersion != "" && defaultVersion != "dev" {
		return defaultVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return defaultVersion
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return defaultVersion
	}
	return info.Main.Version
}
