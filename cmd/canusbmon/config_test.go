package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"arturo/canusb-go/pkg/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
device = "/dev/ttyUSB1"
bitrate = 250000
log_level = "Debug"
frame_debug = true
idle_delay_us = 250
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Device != "/dev/ttyUSB1" {
		t.Fatalf("unexpected device: %q", cfg.Device)
	}
	if cfg.Bitrate != 250000 {
		t.Fatalf("unexpected bitrate: %d", cfg.Bitrate)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
	if !cfg.FrameDebug {
		t.Fatal("expected frame debug enabled")
	}
	if cfg.IdleDelay != 250*time.Microsecond {
		t.Fatalf("unexpected idle delay: %v", cfg.IdleDelay)
	}

	// Keys the file does not set keep their defaults.
	def := defaultMonitorConfig()
	if cfg.BaudRate != def.BaudRate {
		t.Fatalf("baud rate default lost: %d", cfg.BaudRate)
	}

	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateTargets(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*monitorConfig)
		wantErr bool
	}{
		{"no target", func(c *monitorConfig) {}, true},
		{"serial", func(c *monitorConfig) { c.Device = "/dev/ttyUSB0" }, false},
		{"tcp", func(c *monitorConfig) { c.TCPAddress = "10.0.0.5:4001" }, false},
		{"quic", func(c *monitorConfig) { c.QUICAddress = "10.0.0.5:4002" }, false},
		{"two targets", func(c *monitorConfig) {
			c.Device = "/dev/ttyUSB0"
			c.TCPAddress = "10.0.0.5:4001"
		}, true},
		{"bad level", func(c *monitorConfig) {
			c.Device = "/dev/ttyUSB0"
			c.LogLevel = "loud"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultMonitorConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigOpenerSelection(t *testing.T) {
	cfg := defaultMonitorConfig()
	cfg.Device = "/dev/ttyUSB0"
	serial, ok := cfg.opener().(*transport.SerialConfig)
	if !ok {
		t.Fatalf("opener for serial target = %T", cfg.opener())
	}
	if serial.Port != "/dev/ttyUSB0" || serial.BaudRate != cfg.BaudRate {
		t.Fatalf("serial opener not populated: %+v", serial)
	}

	cfg = defaultMonitorConfig()
	cfg.TCPAddress = "10.0.0.5:4001"
	if _, ok := cfg.opener().(*transport.TCPConfig); !ok {
		t.Fatalf("opener for tcp target = %T", cfg.opener())
	}

	cfg = defaultMonitorConfig()
	cfg.QUICAddress = "10.0.0.5:4002"
	if _, ok := cfg.opener().(*transport.QUICConfig); !ok {
		t.Fatalf("opener for quic target = %T", cfg.opener())
	}
}
