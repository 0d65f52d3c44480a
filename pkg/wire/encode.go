package wire

import "arturo/canusb-go/pkg/canbus"

// EncodeFrame serializes a frame into the adapter's variable-length
// data-frame format. The wire format carries only 16 identifier bits,
// so identifiers above 0xFFFF are rejected rather than truncated, and
// payloads are limited to MaxDataLen bytes.
func EncodeFrame(f *canbus.Frame) ([]byte, error) {
	if len(f.Data) > MaxDataLen {
		return nil, ErrPayloadTooLong
	}
	if f.ID > 0xFFFF {
		return nil, ErrIdentifierRange
	}

	length := len(f.Data)
	out := make([]byte, length+DataFrameOverhead)
	out[0] = StartByte

	typ := TypeBitsData | uint8(length)
	if f.Extended {
		typ |= FlagExtended
	}
	out[1] = typ

	out[2] = uint8(f.ID)
	out[3] = uint8(f.ID >> 8)
	copy(out[4:], f.Data)
	out[length+4] = EndByte
	return out, nil
}
