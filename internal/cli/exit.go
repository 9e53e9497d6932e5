package cli

// Exit codes returned by Run.
const (
	ExitOK       = 0
	ExitCallErr  = 1 // the interpreter reported a failure for the call
	ExitUsageErr = 2
	ExitInternal = 3
)
