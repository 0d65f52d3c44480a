package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"arturo/canusb-go/pkg/transport"
	"arturo/canusb-go/pkg/wire"
)

// monitorConfig is the resolved runtime configuration: defaults,
// overlaid by the config file, overlaid by flags
type monitorConfig struct {
	Device      string
	BaudRate    int
	TCPAddress  string
	QUICAddress string
	Bitrate     uint32
	LogLevel    string
	FrameDebug  bool
	IdleDelay   time.Duration
}

func defaultMonitorConfig() monitorConfig {
	return monitorConfig{
		BaudRate: transport.DefaultBaudRate,
		Bitrate:  wire.DefaultBitrate,
		LogLevel: "info",
	}
}

// fileConfig is the canusbmon config.toml key mapping
type fileConfig struct {
	Device      string `toml:"device"`
	BaudRate    int    `toml:"baud_rate"`
	TCPAddress  string `toml:"tcp_address"`
	QUICAddress string `toml:"quic_address"`
	Bitrate     uint32 `toml:"bitrate"`
	LogLevel    string `toml:"log_level"`
	FrameDebug  bool   `toml:"frame_debug"`
	IdleDelayUS int    `toml:"idle_delay_us"`
}

// loadConfig overlays config file values onto the defaults
func loadConfig(path string) (monitorConfig, error) {
	cfg := defaultMonitorConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return monitorConfig{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("baud_rate") {
		cfg.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("tcp_address") {
		cfg.TCPAddress = strings.TrimSpace(raw.TCPAddress)
	}
	if meta.IsDefined("quic_address") {
		cfg.QUICAddress = strings.TrimSpace(raw.QUICAddress)
	}
	if meta.IsDefined("bitrate") {
		cfg.Bitrate = raw.Bitrate
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("frame_debug") {
		cfg.FrameDebug = raw.FrameDebug
	}
	if meta.IsDefined("idle_delay_us") {
		cfg.IdleDelay = time.Duration(raw.IdleDelayUS) * time.Microsecond
	}

	return cfg, nil
}

// validate checks that exactly one transport target is set
func (c *monitorConfig) validate() error {
	targets := 0
	if c.Device != "" {
		targets++
	}
	if c.TCPAddress != "" {
		targets++
	}
	if c.QUICAddress != "" {
		targets++
	}
	if targets == 0 {
		return errors.New("one of -device, -tcp or -quic is required")
	}
	if targets > 1 {
		return errors.New("-device, -tcp and -quic are mutually exclusive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", c.LogLevel)
	}

	if c.BaudRate < 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	return nil
}

// opener builds the transport opener for the configured target
func (c *monitorConfig) opener() transport.Opener {
	switch {
	case c.Device != "":
		return &transport.SerialConfig{Port: c.Device, BaudRate: c.BaudRate}
	case c.TCPAddress != "":
		return &transport.TCPConfig{Address: c.TCPAddress}
	default:
		return &transport.QUICConfig{Address: c.QUICAddress}
	}
}
