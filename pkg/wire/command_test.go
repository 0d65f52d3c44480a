package wire

import (
	"bytes"
	"testing"
)

// TestNewInitCommand_Golden tests the exact bytes of the 500 kbit/s command
func TestNewInitCommand_Golden(t *testing.T) {
	want := []byte{
		0xAA, 0x55, 0x12, 0x03, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01,
		0x00, 0x00, 0x00, 0x00,
		0x17,
	}

	got := NewInitCommand(Bitrate500K)

	if !bytes.Equal(got, want) {
		t.Errorf("NewInitCommand(500k)\nGot:  % X\nWant: % X", got, want)
	}
}

// TestNewInitCommand_AllBitrates tests speed codes and checksums for the
// full supported set
func TestNewInitCommand_AllBitrates(t *testing.T) {
	tests := []struct {
		bitrate  uint32
		wantCode uint8
	}{
		{Bitrate1M, 0x01},
		{Bitrate800K, 0x02},
		{Bitrate500K, 0x03},
		{Bitrate400K, 0x04},
		{Bitrate250K, 0x05},
		{Bitrate200K, 0x06},
		{Bitrate125K, 0x07},
		{Bitrate100K, 0x08},
		{Bitrate50K, 0x09},
		{Bitrate20K, 0x0A},
		{Bitrate10K, 0x0B},
		{Bitrate5K, 0x0C},
	}

	for _, tt := range tests {
		cmd := NewInitCommand(tt.bitrate)

		if len(cmd) != CommandFrameSize {
			t.Fatalf("bitrate %d: len = %d, want %d", tt.bitrate, len(cmd), CommandFrameSize)
		}
		if cmd[0] != StartByte || cmd[1] != CmdMarker {
			t.Errorf("bitrate %d: start bytes = %02X %02X, want AA 55", tt.bitrate, cmd[0], cmd[1])
		}
		if cmd[2] != CmdSettings {
			t.Errorf("bitrate %d: command byte = 0x%02X, want 0x%02X", tt.bitrate, cmd[2], CmdSettings)
		}
		if cmd[3] != tt.wantCode {
			t.Errorf("bitrate %d: speed code = 0x%02X, want 0x%02X", tt.bitrate, cmd[3], tt.wantCode)
		}

		var sum uint32
		for _, b := range cmd[2:19] {
			sum += uint32(b)
		}
		if cmd[19] != uint8(sum&0xFF) {
			t.Errorf("bitrate %d: checksum = 0x%02X, want 0x%02X", tt.bitrate, cmd[19], uint8(sum&0xFF))
		}
	}
}

// TestNewInitCommand_UnknownBitrate tests the documented fallback to 500 kbit/s
func TestNewInitCommand_UnknownBitrate(t *testing.T) {
	got := NewInitCommand(777)
	want := NewInitCommand(Bitrate500K)

	if !bytes.Equal(got, want) {
		t.Errorf("NewInitCommand(777)\nGot:  % X\nWant: % X", got, want)
	}
}

// TestSpeedCode tests the bitrate to code byte mapping
func TestSpeedCode(t *testing.T) {
	tests := []struct {
		bitrate uint32
		want    uint8
	}{
		{Bitrate1M, 0x01},
		{Bitrate5K, 0x0C},
		{0, 0x03},
		{777, 0x03},
		{499999, 0x03},
	}

	for _, tt := range tests {
		if got := SpeedCode(tt.bitrate); got != tt.want {
			t.Errorf("SpeedCode(%d) = 0x%02X, want 0x%02X", tt.bitrate, got, tt.want)
		}
	}
}

// TestChecksum tests the additive 8-bit checksum
func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint8
	}{
		{name: "empty", data: nil, want: 0x00},
		{name: "single byte", data: []byte{0x12}, want: 0x12},
		{name: "wraps at 8 bits", data: []byte{0xFF, 0x02}, want: 0x01},
		{name: "settings span", data: []byte{0x12, 0x03, 0x01, 0x01}, want: 0x17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum(% X) = 0x%02X, want 0x%02X", tt.data, got, tt.want)
			}
		})
	}
}
