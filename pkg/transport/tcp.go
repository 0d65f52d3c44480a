package transport

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// TCP transport defaults
const (
	DefaultDialTimeout    = 10 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	DefaultTCPReadTimeout = 100 * time.Millisecond
)

// TCPConfig configures a TCP transport for adapters reachable through a
// serial device server (ser2net, socat and friends)
type TCPConfig struct {
	Address      string        // "host:port" format
	DialTimeout  time.Duration // Connect timeout (0 = 10s)
	ReadTimeout  time.Duration // Deadline bounding each Read (0 = 100ms)
	WriteTimeout time.Duration // Deadline bounding each Write (0 = 10s)
}

// Open implements Opener
func (c TCPConfig) Open() (Transport, error) {
	if c.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultTCPReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}

	conn, err := net.DialTimeout("tcp", c.Address, c.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.Address, err)
	}

	return newTCPTransport(conn, c.ReadTimeout, c.WriteTimeout), nil
}

// tcpTransport implements Transport over an established net.Conn
type tcpTransport struct {
	conn         net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
	counters
	closed atomic.Bool
}

func newTCPTransport(conn net.Conn, readTimeout, writeTimeout time.Duration) *tcpTransport {
	return &tcpTransport{
		conn:         conn,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Read implements Transport.Read. A deadline expiry with no data is the
// idle case and reports (0, nil); a deadline expiry after a partial read
// still returns the bytes.
func (t *tcpTransport) Read(p []byte) (int, error) {
	t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))

	n, err := t.conn.Read(p)
	if n > 0 {
		t.bytesReceived.Add(uint64(n))
	}
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return n, nil
		}
		if !t.closed.Load() {
			t.readErrors.Add(1)
		}
		return n, err
	}
	return n, nil
}

// Write implements Transport.Write
func (t *tcpTransport) Write(p []byte) (int, error) {
	if t.writeTimeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}

	n, err := t.conn.Write(p)
	if n > 0 {
		t.bytesSent.Add(uint64(n))
	}
	if err != nil {
		t.writeErrors.Add(1)
	}
	return n, err
}

// Close implements Transport.Close
func (t *tcpTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.conn.Close()
}

// Statistics implements Transport.Statistics
func (t *tcpTransport) Statistics() Stats {
	return t.snapshot()
}
