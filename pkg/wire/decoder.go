package wire

import (
	"time"

	"arturo/canusb-go/pkg/canbus"
)

// Result reports one Decode pass over an accumulation buffer.
type Result struct {
	Frames        []canbus.Frame // Decoded frames in buffer order
	Consumed      int            // Bytes to drop from the buffer head
	NoiseBytes    int            // Single bytes discarded while resynchronizing
	DroppedSpans  int            // Data frame spans consumed on a terminator mismatch
	CommandFrames int            // Fixed-length command/response frames consumed
}

// Decode scans buf for adapter frames and returns every complete frame
// found along with the number of bytes consumed from the head of buf.
//
// Bytes that cannot open a frame are dropped one at a time until a start
// byte lines up. Command/response frames are consumed whole but not
// decoded. A data frame whose end byte does not match still consumes its
// declared span; no frame is emitted for it. Decode never reads past
// len(buf): a trailing partial frame stays in the buffer for the next
// pass, so feeding bytes incrementally decodes the same frames as
// feeding them all at once.
func Decode(buf []byte) Result {
	var res Result
	for {
		rest := buf[res.Consumed:]
		if len(rest) == 0 {
			return res
		}

		if rest[0] != StartByte {
			res.Consumed++
			res.NoiseBytes++
			continue
		}
		if len(rest) < 2 {
			return res
		}

		typ := rest[1]

		// Command/response frame, fixed 20 bytes, consumed unread.
		if typ == CmdMarker {
			if len(rest) < CommandFrameSize {
				return res
			}
			res.Consumed += CommandFrameSize
			res.CommandFrames++
			continue
		}

		// A start byte followed by anything without the data-frame
		// type bits is noise.
		if typ&TypeBitsMask != TypeBitsData {
			res.Consumed++
			res.NoiseBytes++
			continue
		}

		length := int(typ & LengthMask)
		span := length + DataFrameOverhead
		if len(rest) < span {
			return res
		}

		if rest[span-1] != EndByte {
			// The declared span is consumed even on a mismatch.
			res.DroppedSpans++
			res.Consumed += span
			continue
		}

		frame := canbus.Frame{
			ID:        uint32(rest[2]) | uint32(rest[3])<<8,
			Length:    uint8(length),
			Extended:  typ&FlagExtended != 0,
			Timestamp: time.Now(),
		}
		if length > 0 {
			frame.Data = make([]byte, length)
			copy(frame.Data, rest[4:4+length])
		}
		res.Frames = append(res.Frames, frame)
		res.Consumed += span
	}
}
