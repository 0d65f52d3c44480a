package transport

import "sync/atomic"

// Stats provides transport-level statistics
type Stats struct {
	BytesSent     uint64 // Total bytes sent
	BytesReceived uint64 // Total bytes received
	WriteErrors   uint64 // Number of write errors
	ReadErrors    uint64 // Number of read errors
}

// counters tracks Stats atomically. Transports embed it and report
// through snapshot.
type counters struct {
	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
	writeErrors   atomic.Uint64
	readErrors    atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		BytesSent:     c.bytesSent.Load(),
		BytesReceived: c.bytesReceived.Load(),
		WriteErrors:   c.writeErrors.Load(),
		ReadErrors:    c.readErrors.Load(),
	}
}
