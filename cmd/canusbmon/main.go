package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"arturo/canusb-go/pkg/canbus"
	"arturo/canusb-go/pkg/canusb"
	"arturo/canusb-go/pkg/session"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a TOML config file (flags override file values)")
		device     = flag.String("device", "", "Serial port of the adapter (e.g. /dev/ttyUSB0)")
		baudRate   = flag.Int("baudrate", 0, "Serial baud rate of the adapter")
		tcpAddr    = flag.String("tcp", "", "Address of a TCP serial bridge (host:port)")
		quicAddr   = flag.String("quic", "", "Address of a QUIC serial bridge (host:port)")
		bitrate    = flag.Uint("bitrate", 0, "CAN bus bitrate in bit/s")
		logLevel   = flag.String("log-level", "", "Log level (debug|info|warn|error)")
		frameDebug = flag.Bool("frame-debug", false, "Hex dump all adapter traffic")
		sendArg    = flag.String("send", "", "Send one frame after connecting (cansend format, e.g. 123#DEADBEEF)")
	)
	flag.Parse()

	cfg := defaultMonitorConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "canusbmon: %v\n", err)
			os.Exit(1)
		}
	}

	// Flags set on the command line override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = *device
		case "baudrate":
			cfg.BaudRate = *baudRate
		case "tcp":
			cfg.TCPAddress = *tcpAddr
		case "quic":
			cfg.QUICAddress = *quicAddr
		case "bitrate":
			cfg.Bitrate = uint32(*bitrate)
		case "log-level":
			cfg.LogLevel = strings.ToLower(*logLevel)
		case "frame-debug":
			cfg.FrameDebug = *frameDebug
		}
	})

	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "canusbmon: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := run(cfg, *sendArg); err != nil {
		fmt.Fprintf(os.Stderr, "canusbmon: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg monitorConfig, sendArg string) error {
	canusb.SetLogLevel(parseLevel(cfg.LogLevel))
	canusb.EnableFrameDebug(cfg.FrameDebug)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sessCfg := session.DefaultConfig()
	sessCfg.Bitrate = cfg.Bitrate
	if cfg.IdleDelay > 0 {
		sessCfg.IdleDelay = cfg.IdleDelay
	}

	s := session.New(cfg.opener(), sessCfg)

	s.Subscribe(func(f canbus.Frame) {
		fmt.Printf("%s  %s\n", f.Timestamp.Format("15:04:05.000000"), &f)
	})
	s.OnDisconnect(func(err error) {
		fmt.Fprintf(os.Stderr, "canusbmon: connection lost: %v\n", err)
		cancel()
	})

	if err := s.Connect(); err != nil {
		return err
	}

	if sendArg != "" {
		frame, err := parseSendFrame(sendArg)
		if err != nil {
			s.Disconnect()
			return err
		}
		if err := s.Send(frame); err != nil {
			s.Disconnect()
			return fmt.Errorf("send %s: %w", sendArg, err)
		}
	}

	<-ctx.Done()

	// Transport counters reset on disconnect, read them first.
	tstats := s.TransportStatistics()
	s.Disconnect()

	stats := s.Statistics()
	fmt.Printf("\nframes rx %d, tx %d, dropped spans %d, command frames %d, noise bytes %d\n",
		stats.GetFramesRx(), stats.GetFramesTx(), stats.GetDroppedSpans(),
		stats.GetCommandFrames(), stats.GetNoiseBytes())
	fmt.Printf("transport: %d bytes in, %d bytes out, %d read errors, %d write errors\n",
		tstats.BytesReceived, tstats.BytesSent, tstats.ReadErrors, tstats.WriteErrors)

	return nil
}

func parseLevel(s string) canusb.LogLevel {
	switch s {
	case "debug":
		return canusb.LevelDebug
	case "warn":
		return canusb.LevelWarn
	case "error":
		return canusb.LevelError
	default:
		return canusb.LevelInfo
	}
}

// parseSendFrame parses cansend notation: a hex identifier and hex
// payload separated by '#'. Identifiers longer than three digits are
// marked extended.
func parseSendFrame(arg string) (*canbus.Frame, error) {
	idStr, dataStr, ok := strings.Cut(arg, "#")
	if !ok {
		return nil, fmt.Errorf("invalid frame %q (expected ID#HEXDATA)", arg)
	}

	id, err := strconv.ParseUint(idStr, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier %q: %w", idStr, err)
	}

	data, err := hex.DecodeString(dataStr)
	if err != nil {
		return nil, fmt.Errorf("invalid payload %q: %w", dataStr, err)
	}

	return &canbus.Frame{
		ID:       uint32(id),
		Length:   uint8(len(data)),
		Data:     data,
		Extended: len(idStr) > 3,
	}, nil
}
