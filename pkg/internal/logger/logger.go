package logger

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Level represents logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns string representation of Level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the interface the library logs through
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level Level)
}

// ZerologLogger adapts a zerolog.Logger to the Logger interface
type ZerologLogger struct {
	log zerolog.Logger
}

// NewDefaultLogger creates a console logger at the given level
func NewDefaultLogger(level Level) *ZerologLogger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	l := zerolog.New(output).
		With().
		Timestamp().
		Str("app", "canusb").
		Logger().
		Level(zerologLevel(level))
	return &ZerologLogger{log: l}
}

// Wrap adapts an existing zerolog.Logger
func Wrap(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: l}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs debug message
func (l *ZerologLogger) Debug(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

// Info logs info message
func (l *ZerologLogger) Info(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

// Warn logs warning message
func (l *ZerologLogger) Warn(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

// Error logs error message
func (l *ZerologLogger) Error(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

// SetLevel sets the logging level
func (l *ZerologLogger) SetLevel(level Level) {
	l.log = l.log.Level(zerologLevel(level))
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that doesn't log
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug does nothing
func (l *NoOpLogger) Debug(format string, args ...interface{}) {}

// Info does nothing
func (l *NoOpLogger) Info(format string, args ...interface{}) {}

// Warn does nothing
func (l *NoOpLogger) Warn(format string, args ...interface{}) {}

// Error does nothing
func (l *NoOpLogger) Error(format string, args ...interface{}) {}

// SetLevel does nothing
func (l *NoOpLogger) SetLevel(level Level) {}

// Global default logger
var defaultLogger Logger = NewDefaultLogger(LevelInfo)

// SetDefault sets the default logger
func SetDefault(logger Logger) {
	defaultLogger = logger
}

// GetDefault returns the default logger
func GetDefault() Logger {
	return defaultLogger
}

// Process-wide switch for raw traffic dumps
var frameDebug atomic.Bool

// SetFrameDebug enables or disables hex dumps of adapter traffic
func SetFrameDebug(enable bool) {
	frameDebug.Store(enable)
}

// FrameDebugEnabled reports whether traffic dumps are on
func FrameDebugEnabled() bool {
	return frameDebug.Load()
}
