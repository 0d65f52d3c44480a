package transport

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// Serial port defaults. The adapter family ships with its USB bridge
// clocked at 2 Mbaud regardless of the CAN bitrate.
const (
	DefaultBaudRate    = 2000000
	DefaultReadTimeout = 100 * time.Millisecond
)

// SerialConfig configures the USB serial port transport
type SerialConfig struct {
	Port        string        // Device path, e.g. "/dev/ttyUSB0" or "COM3"
	BaudRate    int           // Serial line rate, not the CAN bitrate (0 = 2000000)
	ReadTimeout time.Duration // Native timeout bounding each Read (0 = 100ms)
}

// Open implements Opener. The port is opened with 8 data bits, no
// parity and two stop bits, the framing the adapter expects, and any
// bytes queued while nobody was listening are dropped.
func (c SerialConfig) Open() (Transport, error) {
	if c.Port == "" {
		return nil, fmt.Errorf("port is required")
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}

	mode := &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	}

	port, err := serial.Open(c.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.Port, err)
	}
	if err := port.SetReadTimeout(c.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", c.Port, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to reset input buffer on %s: %w", c.Port, err)
	}

	return &serialTransport{port: port}, nil
}

// serialTransport implements Transport over a local serial port
type serialTransport struct {
	port serial.Port
	counters
	closed atomic.Bool
}

// Read implements Transport.Read. The port's read timeout makes Read
// return (0, nil) when the line is idle.
func (t *serialTransport) Read(p []byte) (int, error) {
	n, err := t.port.Read(p)
	if n > 0 {
		t.bytesReceived.Add(uint64(n))
	}
	if err != nil && !t.closed.Load() {
		t.readErrors.Add(1)
	}
	return n, err
}

// Write implements Transport.Write
func (t *serialTransport) Write(p []byte) (int, error) {
	n, err := t.port.Write(p)
	if n > 0 {
		t.bytesSent.Add(uint64(n))
	}
	if err != nil {
		t.writeErrors.Add(1)
	}
	return n, err
}

// Close implements Transport.Close
func (t *serialTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.port.Close()
}

// Statistics implements Transport.Statistics
func (t *serialTransport) Statistics() Stats {
	return t.snapshot()
}
