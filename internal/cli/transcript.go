package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lydakis/ahkx/internal/message"
	"github.com/lydakis/ahkx/internal/transcript"
)

// runTranscript prints a recorded transcript, one call per line.
func runTranscript(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(stderr, "ahkx: usage: ahkx transcript <file>")
		return ExitUsageErr
	}

	entries, err := transcript.ReadAll(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "ahkx: %v\n", err)
		return ExitInternal
	}
	for _, e := range entries {
		payload := string(e.Payload)
		if payload == message.Sentinel {
			payload = "-"
		}
		payload = strings.ReplaceAll(payload, "\n", `\n`)
		fmt.Fprintf(stdout, "%d\t%s\t%s\t%s\t%s\n",
			e.Seq,
			time.Unix(0, e.Time).UTC().Format(time.RFC3339Nano),
			e.Request(),
			e.Kind,
			payload,
		)
	}
	return ExitOK
}
