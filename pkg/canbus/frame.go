package canbus

import (
	"fmt"
	"strings"
	"time"
)

// Frame is a single frame captured from or destined for a CAN bus.
type Frame struct {
	// ID is the CAN identifier. Standard frames carry 11 bits,
	// extended frames 29.
	ID uint32

	// Length is the data length code as carried on the wire. It always
	// equals len(Data) for decoded frames but is kept explicit because
	// some adapters declare codes above the classical CAN limit of 8.
	Length uint8

	// Data holds the payload bytes.
	Data []byte

	// Extended reports whether the identifier is a 29-bit extended one.
	Extended bool

	// Timestamp records when the frame's terminating byte was decoded.
	// It is zero for frames built by hand.
	Timestamp time.Time
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	clone := *f
	if f.Data != nil {
		clone.Data = make([]byte, len(f.Data))
		copy(clone.Data, f.Data)
	}
	return &clone
}

// String renders the frame in a candump-like form, e.g.
// "123 [8] 01 02 03 04 05 06 07 08" with an "x" suffix on the
// identifier of extended frames.
func (f *Frame) String() string {
	var b strings.Builder
	if f.Extended {
		fmt.Fprintf(&b, "%08Xx [%d]", f.ID, f.Length)
	} else {
		fmt.Fprintf(&b, "%03X [%d]", f.ID, f.Length)
	}
	for _, d := range f.Data {
		fmt.Fprintf(&b, " %02X", d)
	}
	return b.String()
}
