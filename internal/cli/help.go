package cli

import (
	"fmt"
	"io"

	"github.com/lydakis/ahkx/internal/config"
)

func printRootHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  ahkx [GLOBAL FLAGS] call [--json] <Function> [args...]")
	fmt.Fprintln(out, "  ahkx [GLOBAL FLAGS] repl")
	fmt.Fprintln(out, "  ahkx [GLOBAL FLAGS] mcp")
	fmt.Fprintln(out, "  ahkx [GLOBAL FLAGS] resolve [--save]")
	fmt.Fprintln(out, "  ahkx transcript <file>")
	fmt.Fprintln(out, "  ahkx version")
	fmt.Fprintln(out, "  ahkx completion <bash|zsh|fish>")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Global flags:")
	fmt.Fprintln(out, "  --config <path>  Read config from path")
	fmt.Fprintln(out, "  --verbose, -v    Log at debug level to stderr")
	fmt.Fprintln(out, "  --help, -h       Show help")
	fmt.Fprintln(out, "  --version, -V    Show version")
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "Config: %s\n", config.ExampleConfigPath())
}
