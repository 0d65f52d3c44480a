package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"arturo/canusb-go/pkg/canbus"
	"arturo/canusb-go/pkg/internal/logger"
	"arturo/canusb-go/pkg/transport"
	"arturo/canusb-go/pkg/wire"
)

var (
	ErrAlreadyConnected = errors.New("session is already connected")
	ErrNotConnected     = errors.New("session is not connected")
)

// state tracks the session lifecycle
type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopping
)

// Session owns one adapter connection. Connect opens the transport,
// switches the adapter to the configured bitrate and starts the one
// background loop that reads bytes, decodes frames and dispatches them
// to observers. Observers survive disconnects, so a session can be
// connected again after Disconnect or after the transport fails.
type Session struct {
	cfg    Config
	opener transport.Opener
	logger logger.Logger
	stats  *Statistics

	// Observer registry
	obsMu    sync.Mutex
	nextID   uint64
	frameObs []frameEntry
	discObs  []discEntry

	// Lifecycle
	mu    sync.Mutex
	state state
	tr    transport.Transport
	stop  chan struct{}
	done  chan struct{}

	// Serializes adapter writes against each other
	writeMu sync.Mutex
}

// New creates a session that will connect through the given opener
func New(opener transport.Opener, cfg Config) *Session {
	cfg.setDefaults()
	return &Session{
		cfg:    cfg,
		opener: opener,
		logger: cfg.Logger,
		stats:  NewStatistics(),
	}
}

// Connect opens the transport, writes the bitrate settings command and
// starts the background loop. On any failure nothing is retained: the
// session stays disconnected and Connect can be called again.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle {
		return ErrAlreadyConnected
	}

	tr, err := s.opener.Open()
	if err != nil {
		return fmt.Errorf("failed to open transport: %w", err)
	}

	if _, err := tr.Write(wire.NewInitCommand(s.cfg.Bitrate)); err != nil {
		tr.Close()
		return fmt.Errorf("failed to write settings command: %w", err)
	}

	s.tr = tr
	s.state = stateRunning
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(tr, s.stop, s.done)

	s.logger.Info("session connected, bus bitrate %d", s.cfg.Bitrate)
	return nil
}

// Disconnect asks the loop to stop, waits for it to finish its current
// iteration and closes the transport. It is idempotent and safe to call
// on a session that never connected or whose transport already failed.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return nil
	}
	s.state = stateStopping
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	if s.tr != nil {
		s.tr.Close()
		s.tr = nil
	}
	s.state = stateIdle
	s.mu.Unlock()

	s.logger.Info("session disconnected")
	return nil
}

// Connected reports whether the background loop is running
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateRunning
}

// Subscribe registers fn for every decoded frame. Multiple observers
// each receive every frame, in registration order.
func (s *Session) Subscribe(fn FrameHandler) *Observer {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.frameObs = append(s.frameObs, frameEntry{id: id, fn: fn})
	return &Observer{remove: func() { s.removeFrameObserver(id) }}
}

// OnDisconnect registers fn to be called when the loop terminates
// because the transport failed
func (s *Session) OnDisconnect(fn DisconnectHandler) *Observer {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.discObs = append(s.discObs, discEntry{id: id, fn: fn})
	return &Observer{remove: func() { s.removeDisconnectObserver(id) }}
}

// Frames subscribes a FrameStream with the given channel capacity
// (0 = DefaultStreamBuffer)
func (s *Session) Frames(buffer int) *FrameStream {
	if buffer <= 0 {
		buffer = DefaultStreamBuffer
	}
	fs := &FrameStream{c: make(chan canbus.Frame, buffer)}
	fs.obs = s.Subscribe(func(f canbus.Frame) {
		select {
		case fs.c <- f:
		default:
			fs.dropped.Add(1)
		}
	})
	return fs
}

// Send encodes frame and writes it to the adapter
func (s *Session) Send(frame *canbus.Frame) error {
	data, err := wire.EncodeFrame(frame)
	if err != nil {
		return err
	}

	s.mu.Lock()
	tr := s.tr
	running := s.state == stateRunning
	s.mu.Unlock()
	if !running || tr == nil {
		return ErrNotConnected
	}

	if logger.FrameDebugEnabled() {
		s.logger.Debug("session tx %d bytes: % X", len(data), data)
	}

	s.writeMu.Lock()
	_, err = tr.Write(data)
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	s.stats.FrameTx()
	return nil
}

// Statistics returns the session's counters
func (s *Session) Statistics() *Statistics {
	return s.stats
}

// TransportStatistics returns the counters of the current transport, or
// zero values when disconnected
func (s *Session) TransportStatistics() transport.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tr == nil {
		return transport.Stats{}
	}
	return s.tr.Statistics()
}

// loop reads available bytes, accumulates them and decodes frames until
// asked to stop or the transport fails. The accumulation buffer is
// local to the loop: nothing else touches it.
func (s *Session) loop(tr transport.Transport, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	s.logger.Debug("session loop started")
	defer s.logger.Debug("session loop stopped")

	scratch := make([]byte, s.cfg.ReadChunk)
	buf := make([]byte, 0, s.cfg.ReadChunk)

	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := tr.Read(scratch)
		if err != nil {
			select {
			case <-stop:
				// Shutdown already requested, not a failure.
				return
			default:
			}
			s.fail(err)
			return
		}
		if n == 0 {
			time.Sleep(s.cfg.IdleDelay)
			continue
		}

		if logger.FrameDebugEnabled() {
			s.logger.Debug("session rx %d bytes: % X", n, scratch[:n])
		}

		buf = append(buf, scratch[:n]...)
		res := wire.Decode(buf)
		if res.Consumed > 0 {
			buf = buf[:copy(buf, buf[res.Consumed:])]
		}

		s.record(res)
		if len(res.Frames) > 0 {
			s.dispatch(res.Frames)
		}
	}
}

// fail tears the session down after a read error and notifies
// disconnect observers. A concurrent Disconnect wins: then the error is
// part of the requested shutdown and nobody is notified.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return
	}
	s.state = stateIdle
	tr := s.tr
	s.tr = nil
	s.mu.Unlock()

	if tr != nil {
		tr.Close()
	}

	s.logger.Error("session read failed: %v", err)

	s.obsMu.Lock()
	handlers := make([]DisconnectHandler, len(s.discObs))
	for i, e := range s.discObs {
		handlers[i] = e.fn
	}
	s.obsMu.Unlock()

	for _, fn := range handlers {
		fn(err)
	}
}

func (s *Session) record(res wire.Result) {
	if n := len(res.Frames); n > 0 {
		s.stats.AddFramesRx(uint64(n))
	}
	if res.DroppedSpans > 0 {
		s.stats.AddDroppedSpans(uint64(res.DroppedSpans))
		s.logger.Debug("dropped %d malformed frame span(s)", res.DroppedSpans)
	}
	if res.CommandFrames > 0 {
		s.stats.AddCommandFrames(uint64(res.CommandFrames))
	}
	if res.NoiseBytes > 0 {
		s.stats.AddNoiseBytes(uint64(res.NoiseBytes))
	}
}

// dispatch hands frames to the observers registered at the start of the
// pass, in wire order
func (s *Session) dispatch(frames []canbus.Frame) {
	s.obsMu.Lock()
	handlers := make([]FrameHandler, len(s.frameObs))
	for i, e := range s.frameObs {
		handlers[i] = e.fn
	}
	s.obsMu.Unlock()

	for _, f := range frames {
		for _, fn := range handlers {
			fn(f)
		}
	}
}

func (s *Session) removeFrameObserver(id uint64) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, e := range s.frameObs {
		if e.id == id {
			s.frameObs = append(s.frameObs[:i], s.frameObs[i+1:]...)
			return
		}
	}
}

func (s *Session) removeDisconnectObserver(id uint64) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, e := range s.discObs {
		if e.id == id {
			s.discObs = append(s.discObs[:i], s.discObs[i+1:]...)
			return
		}
	}
}
