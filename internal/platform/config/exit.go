package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error to stderr and exits with code 1. CLI
// entry points use it instead of log.Fatalf to skip the log prefix.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
