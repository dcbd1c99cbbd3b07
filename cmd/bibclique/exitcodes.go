package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no library, invalid config.yml)
	ExitDataError   = 3 // Data error (malformed entries.jsonl, unknown id)
	ExitCancelled   = 130
)
