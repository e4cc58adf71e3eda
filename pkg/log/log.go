// Package log provides a small leveled logger on top of the standard
// library's slog package.
//
// A global logger writes JSON (or text when LOG_FORMAT=text) to os.Stderr.
// The level is changed at runtime with SetLevel; SetOutput redirects the
// stream and returns a restore function, which tests use to capture output.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	logger        *slog.Logger
	globalLeveler           = &slog.LevelVar{}
	outputWriter  io.Writer = os.Stderr
	outputFormat            = "json"

	// ErrInvalidLogLevel indicates an unknown level string was provided.
	ErrInvalidLogLevel = fmt.Errorf("invalid log level")

	// ErrInvalidLogFormat indicates an unknown format string was provided.
	ErrInvalidLogFormat = fmt.Errorf("invalid log format")
)

func init() {
	globalLeveler.Set(slog.LevelInfo)
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "text" {
		outputFormat = "text"
	}
	configureLogger()
}

func configureLogger() {
	opts := &slog.HandlerOptions{Level: globalLeveler}

	var handler slog.Handler
	if outputFormat == "text" {
		handler = slog.NewTextHandler(outputWriter, opts)
	} else {
		handler = slog.NewJSONHandler(outputWriter, opts)
	}
	logger = slog.New(handler)
}

// SetOutput changes the output destination for the logger and returns a
// function that restores the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	original := outputWriter
	outputWriter = w
	configureLogger()
	return func() {
		outputWriter = original
		configureLogger()
	}
}

// SetLevel changes the global log level. Accepts a slog.Level or a string
// such as "debug", "INFO", "warn", "error".
func SetLevel(level any) error {
	switch v := level.(type) {
	case slog.Level:
		globalLeveler.Set(v)
		return nil
	case string:
		parsed, err := ParseLevel(v)
		if err != nil {
			return err
		}
		globalLeveler.Set(parsed)
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, level)
	}
}

// SetFormat selects the handler encoding, "json" or "text". An empty
// string keeps JSON.
func SetFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		outputFormat = "json"
	case "text":
		outputFormat = "text"
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, format)
	}
	configureLogger()
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
	}
}

// CurrentLevel returns the active log level.
func CurrentLevel() slog.Level {
	return globalLeveler.Level()
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger.
func Logger() *slog.Logger {
	return logger
}
