// Package logger wraps zerolog with the storefront's level, format and output settings.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog logger
type Logger struct {
	logger zerolog.Logger
	closer io.Closer
}

// New creates a logger writing to stdout or to the file named by output.
// Unlike the zerolog global, the returned handle must be passed to every
// component that logs.
func New(level, format, output string) (*Logger, error) {
	var writer io.Writer = os.Stdout
	var closer io.Closer
	if output != "" && output != "stdout" {
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", output, err)
		}
		writer = file
		closer = file
	}

	return NewWithWriter(level, format, writer, closer), nil
}

// NewWithWriter creates a logger on an arbitrary writer. closer may be nil.
func NewWithWriter(level, format string, writer io.Writer, closer io.Closer) *Logger {
	if format == "console" {
		writer = zerolog.ConsoleWriter{Out: writer}
	}

	zl := zerolog.New(writer).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger: zl, closer: closer}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info logs an info message
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn logs a warning message
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error logs an error message
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", name).Logger()}
}

// Level reports the configured minimum level.
func (l *Logger) Level() zerolog.Level {
	return l.logger.GetLevel()
}

// GetLogger returns the underlying zerolog.Logger
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
