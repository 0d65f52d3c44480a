package session

import (
	"sync"
	"sync/atomic"

	"arturo/canusb-go/pkg/canbus"
)

// FrameHandler receives decoded frames. Handlers run on the session's
// loop goroutine and see frames in wire order; anything slow belongs on
// the handler's own goroutine (see Session.Frames for a ready-made
// channel handoff).
type FrameHandler func(frame canbus.Frame)

// DisconnectHandler is notified with the read error that ended the loop
// when the transport fails mid-session. Requested disconnects do not
// notify.
type DisconnectHandler func(err error)

// Observer is the removable registration handle returned by Subscribe,
// OnDisconnect and Frames.
type Observer struct {
	once   sync.Once
	remove func()
}

// Remove unregisters the observer. Removing twice is a no-op. A handler
// may still see frames already being dispatched when Remove returns.
func (o *Observer) Remove() {
	if o == nil || o.remove == nil {
		return
	}
	o.once.Do(o.remove)
}

// frameEntry pairs a handler with its registration id so removal keeps
// dispatch in registration order.
type frameEntry struct {
	id uint64
	fn FrameHandler
}

type discEntry struct {
	id uint64
	fn DisconnectHandler
}

// FrameStream adapts a subscription to a buffered channel so consumers
// on other goroutines never stall the loop: when the channel is full
// the frame is counted as dropped instead of blocking.
type FrameStream struct {
	c       chan canbus.Frame
	obs     *Observer
	dropped atomic.Uint64
}

// C returns the receive side of the stream. The channel is never
// closed; receivers should select against their own done signal.
func (fs *FrameStream) C() <-chan canbus.Frame {
	return fs.c
}

// Dropped returns how many frames were discarded because the channel
// was full.
func (fs *FrameStream) Dropped() uint64 {
	return fs.dropped.Load()
}

// Close unregisters the stream's subscription. The channel stops
// filling but remains open.
func (fs *FrameStream) Close() {
	fs.obs.Remove()
}
