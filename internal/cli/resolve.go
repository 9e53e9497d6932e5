package cli

import (
	"fmt"
	"io"

	"github.com/lydakis/ahkx/internal/bootstrap"
	"github.com/lydakis/ahkx/internal/config"
	"github.com/lydakis/ahkx/internal/paths"
)

var (
	resolveExecutableFn = bootstrap.ResolveExecutable
	saveConfigFn        = config.SaveTo
)

func runResolve(cfg *config.Config, configPath string, args []string, stdout, stderr io.Writer) int {
	save := false
	for _, arg := range args {
		switch arg {
		case "--save":
			save = true
		case "-h", "--help":
			fmt.Fprintln(stdout, "Usage: ahkx resolve [--save]")
			fmt.Fprintln(stdout, "")
			fmt.Fprintln(stdout, "Prints the interpreter executable ahkx would run.")
			fmt.Fprintf(stdout, "Lookup order: config executable, %s, PATH, install locations.\n", bootstrap.EnvExecutable)
			fmt.Fprintln(stdout, "--save writes the result to the config file.")
			return ExitOK
		default:
			fmt.Fprintf(stderr, "ahkx: unsupported flag for resolve: %s\n", arg)
			return ExitUsageErr
		}
	}

	path, err := resolveExecutableFn(cfg.Executable)
	if err != nil {
		fmt.Fprintf(stderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	fmt.Fprintln(stdout, path)
	if !save {
		return ExitOK
	}

	if configPath == "" {
		configPath = paths.ConfigFile()
	}
	// Re-read without env expansion so ${VAR} references survive the rewrite.
	editable, err := config.LoadForEditFrom(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	editable.Executable = path
	if err := saveConfigFn(configPath, editable); err != nil {
		fmt.Fprintf(stderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	fmt.Fprintf(stderr, "saved executable to %s\n", configPath)
	return ExitOK
}
