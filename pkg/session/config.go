package session

import (
	"time"

	"arturo/canusb-go/pkg/internal/logger"
	"arturo/canusb-go/pkg/wire"
)

// Defaults
const (
	// DefaultIdleDelay keeps the loop off the CPU while the bus is
	// quiet without adding visible latency at CAN bitrates.
	DefaultIdleDelay = 500 * time.Microsecond

	// DefaultReadChunk is the scratch buffer size handed to each
	// transport read.
	DefaultReadChunk = 4096

	// DefaultStreamBuffer is the channel capacity used by Frames when
	// the caller asks for none.
	DefaultStreamBuffer = 256
)

// Config configures a Session
type Config struct {
	// Bitrate is the CAN bus bitrate requested from the adapter on
	// connect. Unsupported values fall back to wire.DefaultBitrate
	// inside the settings command. 0 = wire.DefaultBitrate.
	Bitrate uint32

	// IdleDelay is how long the loop yields after a read that returned
	// nothing. 0 = DefaultIdleDelay.
	IdleDelay time.Duration

	// ReadChunk is the scratch buffer size for transport reads.
	// 0 = DefaultReadChunk.
	ReadChunk int

	// Logger receives lifecycle and anomaly logs. nil = no logging.
	Logger logger.Logger
}

// DefaultConfig returns a Config with library defaults
func DefaultConfig() Config {
	return Config{
		Bitrate:   wire.DefaultBitrate,
		IdleDelay: DefaultIdleDelay,
		ReadChunk: DefaultReadChunk,
	}
}

func (c *Config) setDefaults() {
	if c.Bitrate == 0 {
		c.Bitrate = wire.DefaultBitrate
	}
	if c.IdleDelay == 0 {
		c.IdleDelay = DefaultIdleDelay
	}
	if c.ReadChunk == 0 {
		c.ReadChunk = DefaultReadChunk
	}
	if c.Logger == nil {
		c.Logger = logger.NewNoOpLogger()
	}
}
