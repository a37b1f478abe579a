// Package logging is a thin wrapper around the standard logger, used for
// the shell's own non-fatal internal conditions (never for command
// output, which always goes straight to stdout/stderr untouched).
package logging

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "myshell: ", 0)

// Warn logs a non-fatal internal condition to stderr.
func Warn(format string, args ...any) {
	std.Printf(format, args...)
}
