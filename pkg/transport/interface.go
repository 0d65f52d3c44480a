package transport

// Transport is the pluggable byte-level connection to a USB-CAN adapter.
// Implementations move raw bytes; framing belongs to the wire package.
type Transport interface {
	// Read fills p with whatever bytes are pending and returns their
	// count. A Read that reaches the transport's short native timeout
	// with nothing received returns (0, nil) so the caller can yield
	// instead of blocking forever. Any other condition is an error.
	Read(p []byte) (int, error)

	// Write sends p to the adapter.
	// Must be safe to call while another goroutine blocks in Read.
	Write(p []byte) (int, error)

	// Close tears the connection down and unblocks a pending Read.
	// Closing an already closed transport is a no-op.
	Close() error

	// Statistics returns transport-level byte and error counters.
	Statistics() Stats
}

// Opener opens the byte-level connection described by a configuration.
// Session keeps an Opener rather than a live Transport so that a failed
// open leaves nothing behind to clean up.
type Opener interface {
	Open() (Transport, error)
}
