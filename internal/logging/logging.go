// Package logging holds the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.Mutex
	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "meetcost",
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
)

// Default returns the shared logger.
func Default() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetVerbose enables debug logging.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// SetQuiet drops everything below error.
func SetQuiet() {
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(log.ErrorLevel)
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// StateDir returns the directory for log files, following XDG_STATE_HOME.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "meetcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "meetcost")
}

// RedirectToFile sends log output to meetcost.log under StateDir so it
// does not draw over a full-screen UI. If the file cannot be opened, output
// is discarded. The returned func restores stderr.
func RedirectToFile() func() {
	dir := StateDir()
	var w io.Writer = io.Discard
	var f *os.File
	if err := os.MkdirAll(dir, 0o750); err == nil {
		f, err = os.OpenFile(filepath.Join(dir, "meetcost.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err == nil {
			w = f
		}
	}
	SetOutput(w)
	return func() {
		SetOutput(os.Stderr)
		if f != nil {
			_ = f.Close()
		}
	}
}
