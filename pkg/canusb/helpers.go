package canusb

import (
	"crypto/tls"

	"arturo/canusb-go/pkg/session"
	"arturo/canusb-go/pkg/transport"
)

// Connection helpers for the common single-adapter case

// Open connects a session over the given transport opener
func Open(opener transport.Opener, bitrate uint32) (*session.Session, error) {
	cfg := session.DefaultConfig()
	cfg.Bitrate = bitrate

	s := session.New(opener, cfg)
	if err := s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSerial connects to an adapter on a local serial port
func OpenSerial(port string, bitrate uint32) (*session.Session, error) {
	return Open(&transport.SerialConfig{Port: port}, bitrate)
}

// OpenTCP connects to an adapter exposed by a TCP serial bridge
func OpenTCP(address string, bitrate uint32) (*session.Session, error) {
	return Open(&transport.TCPConfig{Address: address}, bitrate)
}

// OpenQUIC connects to an adapter exposed by a QUIC serial bridge.
// A nil tlsConf skips certificate verification.
func OpenQUIC(address string, bitrate uint32, tlsConf *tls.Config) (*session.Session, error) {
	return Open(&transport.QUICConfig{Address: address, TLSConfig: tlsConf}, bitrate)
}
