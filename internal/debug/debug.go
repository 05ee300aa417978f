// Package debug is the opt-in diagnostics log for bugtracker.
// The TUI owns the terminal, so nothing is printed; when enabled, lines go to
// ~/.bugtracker/debug.log (or the configured path), truncated on each launch.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// LogFileName is the default log file name.
	LogFileName = "debug.log"
	// LogDirName is the directory under the user's home holding the log.
	LogDirName = ".bugtracker"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = log.New(io.Discard, "", 0)
	logFile *os.File
	logPath string

	// defaultPath is swapped by tests.
	defaultPath = defaultLogPath
)

// Init enables or disables logging. An empty path selects the default
// location. Calling Init again closes any previously opened file.
func Init(enable bool, path string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	enabled = enable
	if !enable {
		logger = log.New(io.Discard, "", 0)
		return nil
	}

	if path == "" {
		p, err := defaultPath()
		if err != nil {
			enabled = false
			return fmt.Errorf("determine log path: %w", err)
		}
		path = p
	}

	//nolint:gosec // G301: user-owned config directory
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		enabled = false
		return fmt.Errorf("create log directory: %w", err)
	}

	//nolint:gosec // G304: path comes from config or the user's home
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		enabled = false
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f
	logPath = path
	logger = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logger.Printf("=== bugtracker debug log started at %s ===", time.Now().Format(time.RFC3339))
	return nil
}

// Close flushes and closes the log file. Safe to call repeatedly.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logPath = ""
	logger = log.New(io.Discard, "", 0)
}

// Logf writes a formatted line when logging is enabled.
func Logf(format string, v ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return
	}
	logger.Printf(format, v...)
}

// Enabled reports whether logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Path returns the open log file path, or "" when disabled.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func defaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}
