package wire

import "errors"

// USB-CAN adapter serial protocol constants

// Framing bytes
const (
	StartByte uint8 = 0xAA // Opens every frame in either direction
	EndByte   uint8 = 0x55 // Terminates a variable-length data frame
	CmdMarker uint8 = 0x55 // After StartByte, introduces a fixed-length command frame
)

// Data frame type byte layout
const (
	TypeBitsMask uint8 = 0xC0 // Upper two bits identify the frame kind
	TypeBitsData uint8 = 0xC0 // Both bits set marks a data frame
	FlagExtended uint8 = 0x20 // 29-bit identifier flag
	LengthMask   uint8 = 0x0F // Payload length in the low nibble
)

// Frame sizes
const (
	DataFrameOverhead = 5  // Start byte + type byte + 2 identifier bytes + end byte
	MaxDataLen        = 15 // Largest length the low nibble can declare
	MaxFrameSize      = MaxDataLen + DataFrameOverhead
	CommandFrameSize  = 20 // Fixed size of command and response frames
)

// Command-type bytes
const (
	CmdSettings uint8 = 0x12 // Bitrate and filter settings command
)

// Supported bus bitrates in bits per second. The adapter accepts only
// these twelve rates; anything else falls back to DefaultBitrate.
const (
	Bitrate1M   uint32 = 1000000
	Bitrate800K uint32 = 800000
	Bitrate500K uint32 = 500000
	Bitrate400K uint32 = 400000
	Bitrate250K uint32 = 250000
	Bitrate200K uint32 = 200000
	Bitrate125K uint32 = 125000
	Bitrate100K uint32 = 100000
	Bitrate50K  uint32 = 50000
	Bitrate20K  uint32 = 20000
	Bitrate10K  uint32 = 10000
	Bitrate5K   uint32 = 5000

	DefaultBitrate = Bitrate500K
)

// Errors
var (
	ErrPayloadTooLong  = errors.New("payload too long")
	ErrIdentifierRange = errors.New("identifier exceeds the 16-bit wire field")
)
