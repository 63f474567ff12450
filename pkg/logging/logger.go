// Package logging writes hook diagnostics to per-session files in the user
// log directory (~/.sessionkeeper/logs). Stdout belongs to the hook protocol,
// so nothing here ever writes to it; when the log file is unavailable output
// goes to stderr.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger provides leveled logging for one hook component. Every logger in a
// process shares the same session ID and log file.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	stateMu sync.Mutex

	// sessionID names the log file; set from the hook payload or generated
	sessionID string

	// logDir is the directory where log files are stored
	logDir string

	// initOnce ensures directory initialization happens once
	initOnce sync.Once

	// initErr stores any error from directory initialization
	initErr error
)

// SetSessionID binds subsequent loggers to the conversation id from the hook
// payload. Ids that are empty or contain path separators are ignored.
func SetSessionID(id string) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return
	}
	stateMu.Lock()
	sessionID = id
	stateMu.Unlock()
}

// SetLogDirectory sets where log files are written, normally
// workspace.Paths.LogDir. It must be called before the first NewLogger;
// without it loggers fall back to stderr.
func SetLogDirectory(dir string) {
	stateMu.Lock()
	logDir = dir
	stateMu.Unlock()
}

// getSessionID returns the bound session ID, generating one on first use
func getSessionID() string {
	stateMu.Lock()
	defer stateMu.Unlock()
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	return sessionID
}

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		stateMu.Lock()
		defer stateMu.Unlock()

		if logDir == "" {
			initErr = errors.New("log directory not set")
			return
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for a component, writing to
// <log dir>/<session-id>-hooks.log.
//
// On failure it returns a stderr logger along with the error, so callers
// always get something usable.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	stateMu.Lock()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-hooks.log", sessID))
	stateMu.Unlock()

	// Append mode: every hook invocation of a session shares one file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: file logging unavailable: %v", err)

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    logger,
	}
}

// Discard returns a logger that drops everything. Used by tests and callers
// that were handed no logger.
func Discard() *Logger {
	return &Logger{component: "discard", logger: log.New(io.Discard, "", 0)}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
