package canusb

import (
	"arturo/canusb-go/pkg/internal/logger"
)

// LogLevel represents logging level
type LogLevel int

const (
	// LevelDebug shows all log messages (most verbose)
	LevelDebug LogLevel = iota
	// LevelInfo shows info, warn, and error messages (default)
	LevelInfo
	// LevelWarn shows warn and error messages
	LevelWarn
	// LevelError shows only error messages
	LevelError
)

// SetLogLevel sets the global logging level
// Use this to enable/disable different levels of logging output
func SetLogLevel(level LogLevel) {
	logger.SetDefault(logger.NewDefaultLogger(logger.Level(level)))
}

// EnableFrameDebug enables or disables detailed traffic debugging
// When enabled, shows hex dumps of all bytes sent to and received from
// the adapter
func EnableFrameDebug(enable bool) {
	logger.SetFrameDebug(enable)
}
