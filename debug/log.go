package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Log categories
const (
	CatEngine = "engine"
	CatCtrl   = "ctrl"
	CatAudio  = "audio"
	CatMIDI   = "midi"
	CatUI     = "ui"
	CatConfig = "config"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool

	counters = make(map[string]int)
)

// DefaultPath returns ~/.config/go-stepseq/debug.log
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-stepseq", "debug.log"), nil
}

// Enable starts debug logging to the default path
func Enable() error {
	path, err := DefaultPath()
	if err != nil {
		return fmt.Errorf("debug log path: %w", err)
	}
	return EnableAt(path)
}

// EnableAt starts debug logging to path, truncating it
func EnableAt(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}

	file = f
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	write("debug", "=== Debug logging started ===")
	return nil
}

// Enabled reports whether logging is on
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
	clear(counters)
}

// Log writes a message to the debug log. Never call it from the audio thread.
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || file == nil {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events)
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	if !enabled {
		mu.Unlock()
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n <= 1 || count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// write expects mu to be held
func write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-8s %s\n", ts, category, msg)
	file.Sync() // flush immediately so we see logs even on crash
}
