// Package mission drives the plan/execute/evaluate/synthesize protocol.
package mission

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes leveled mission log lines to a file with thread-safe
// access. An empty path yields a no-op logger.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// NewLogger creates a logger writing to the specified path, creating
// parent directories as needed.
func NewLogger(logPath string) (*Logger, error) {
	if logPath == "" {
		return &Logger{}, nil
	}

	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := &Logger{file: f}
	logger.Infof("=== Mission log started at %s ===", time.Now().Format(time.RFC3339))
	return logger, nil
}

// NewLoggerForData creates a mission logger under the given data
// directory, returning a no-op logger on error.
func NewLoggerForData(dataDir string) *Logger {
	logger, err := NewLogger(filepath.Join(dataDir, "logs", "mission.log"))
	if err != nil {
		return &Logger{}
	}
	return logger
}

// Infof logs an INFO line.
func (l *Logger) Infof(format string, args ...interface{}) { l.logf("INFO", format, args...) }

// Warnf logs a WARN line.
func (l *Logger) Warnf(format string, args ...interface{}) { l.logf("WARN", format, args...) }

// Errorf logs an ERROR line.
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf("ERROR", format, args...) }

func (l *Logger) logf(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.file, "[%s] %s %s\n", timestamp, level, msg)
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
