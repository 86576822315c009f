// Package logger is the verbose-mode log sink shared by every
// RecallMind command. It stays silent unless --verbose flips it on,
// at which point sync cycles, watcher events and retrieval steps
// report their progress on stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var state = struct {
	sync.RWMutex
	verbose bool
	out     io.Writer
}{out: os.Stderr}

// SetVerbose turns verbose logging on or off.
func SetVerbose(v bool) {
	state.Lock()
	defer state.Unlock()
	state.verbose = v
}

// IsVerbose reports whether verbose logging is on.
func IsVerbose() bool {
	state.RLock()
	defer state.RUnlock()
	return state.verbose
}

// SetOutput redirects log output away from os.Stderr. Tests use this to
// capture what was written.
func SetOutput(w io.Writer) {
	state.Lock()
	defer state.Unlock()
	state.out = w
}

func emit(prefix, format string, args ...any) {
	state.RLock()
	defer state.RUnlock()
	if state.verbose {
		fmt.Fprintf(state.out, prefix+format+"\n", args...)
	}
}

// Debug logs fine-grained progress, such as per-file ingestion steps.
func Debug(format string, args ...any) { emit("[DEBUG] ", format, args...) }

// Info logs notable state changes.
func Info(format string, args ...any) { emit("[INFO] ", format, args...) }

// Warn logs recoverable problems.
func Warn(format string, args ...any) { emit("[WARN] ", format, args...) }

// Section prints a visual divider before a new phase of work.
func Section(name string) {
	state.RLock()
	defer state.RUnlock()
	if state.verbose {
		fmt.Fprintf(state.out, "\n=== %s ===\n", name)
	}
}
