package wire

// speedCodes maps a bus bitrate to the adapter's speed code byte.
var speedCodes = map[uint32]uint8{
	Bitrate1M:   0x01,
	Bitrate800K: 0x02,
	Bitrate500K: 0x03,
	Bitrate400K: 0x04,
	Bitrate250K: 0x05,
	Bitrate200K: 0x06,
	Bitrate125K: 0x07,
	Bitrate100K: 0x08,
	Bitrate50K:  0x09,
	Bitrate20K:  0x0A,
	Bitrate10K:  0x0B,
	Bitrate5K:   0x0C,
}

// SpeedCode returns the adapter's code byte for a bus bitrate. Bitrates
// outside the supported set map to the DefaultBitrate code.
func SpeedCode(bitrate uint32) uint8 {
	if code, ok := speedCodes[bitrate]; ok {
		return code
	}
	return speedCodes[DefaultBitrate]
}

// NewInitCommand builds the 20-byte settings command that configures the
// adapter for the requested bus bitrate. The configuration bytes between
// the speed code and the trailing checksum are the vendor tool's
// defaults: variable-length framing, no identifier filtering.
func NewInitCommand(bitrate uint32) []byte {
	cmd := make([]byte, CommandFrameSize)
	cmd[0] = StartByte
	cmd[1] = CmdMarker
	cmd[2] = CmdSettings
	cmd[3] = SpeedCode(bitrate)
	cmd[4] = 0x01
	cmd[14] = 0x01
	cmd[19] = Checksum(cmd[2:19])
	return cmd
}

// Checksum computes the adapter's command checksum: the byte sum of data
// truncated to 8 bits. Settings commands carry it over bytes 2 through
// 18, the span between the two start bytes and the checksum itself.
func Checksum(data []byte) uint8 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return uint8(sum & 0xFF)
}
