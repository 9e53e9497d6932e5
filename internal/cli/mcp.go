package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lydakis/ahkx/internal/config"
	"github.com/lydakis/ahkx/internal/mcpserver"
)

func runMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) int {
	if len(args) > 0 {
		if args[0] == "-h" || args[0] == "--help" {
			fmt.Fprintln(rootStdout, "Usage: ahkx mcp")
			fmt.Fprintln(rootStdout, "")
			fmt.Fprintln(rootStdout, "Serves the automation verbs as MCP tools on stdin/stdout until stdin closes.")
			return ExitOK
		}
		fmt.Fprintln(rootStderr, "ahkx: mcp takes no arguments")
		return ExitUsageErr
	}

	e, err := openEngine(cfg, logger)
	if err != nil {
		fmt.Fprintf(rootStderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	defer e.Close()

	srv := mcpserver.New(e, buildVersion, logger)
	if err := srv.Serve(ctx, rootStdin, rootStdout); err != nil {
		logger.Error("mcp server stopped", "error", err)
		return ExitInternal
	}
	return ExitOK
}
