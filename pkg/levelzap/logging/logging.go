// Package logging provides component loggers for levelzap, backed by
// charmbracelet/log. Runs are short-lived single passes, so there is no
// rotation or file sink by default: loggers write to stderr, and quiet mode
// silences everything below error.
//
// Basic usage:
//
//	logging.Init(logging.Config{Level: "info"})
//	logger := logging.Get("flatten")
//	logger.Info("run started", "root", "/home/user/inbox")
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is a component-scoped logger.
type Logger = log.Logger

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Quiet silences everything below error.
	Quiet bool

	// Writer overrides the output destination. Defaults to stderr.
	Writer io.Writer
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// parseLevel maps a level string to a charmbracelet/log level.
func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

type state struct {
	mu      sync.Mutex
	level   log.Level
	writer  io.Writer
	loggers map[string]*Logger
}

var globalState = &state{
	level:   log.InfoLevel,
	writer:  os.Stderr,
	loggers: make(map[string]*Logger),
}

// Init configures the logging system. Loggers handed out before Init pick up
// the new settings on the next Get; the CLI calls Init before any work runs.
func Init(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	if cfg.Quiet {
		level = log.ErrorLevel
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	globalState.level = level
	globalState.writer = cfg.Writer
	if globalState.writer == nil {
		globalState.writer = os.Stderr
	}
	globalState.loggers = make(map[string]*Logger)
	return nil
}

// Get returns a logger for the given component.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := log.NewWithOptions(globalState.writer, log.Options{
		Level:           globalState.level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          component,
	})
	globalState.loggers[component] = logger
	return logger
}
