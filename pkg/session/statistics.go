package session

import "sync/atomic"

// Statistics tracks session-level statistics
type Statistics struct {
	numFramesRx      uint64
	numFramesTx      uint64
	numDroppedSpans  uint64
	numCommandFrames uint64
	numNoiseBytes    uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{}
}

// AddFramesRx adds received frames
func (s *Statistics) AddFramesRx(n uint64) {
	atomic.AddUint64(&s.numFramesRx, n)
}

// FrameTx increments transmitted frames
func (s *Statistics) FrameTx() {
	atomic.AddUint64(&s.numFramesTx, 1)
}

// AddDroppedSpans adds frame spans dropped on a terminator mismatch
func (s *Statistics) AddDroppedSpans(n uint64) {
	atomic.AddUint64(&s.numDroppedSpans, n)
}

// AddCommandFrames adds command/response frames consumed unread
func (s *Statistics) AddCommandFrames(n uint64) {
	atomic.AddUint64(&s.numCommandFrames, n)
}

// AddNoiseBytes adds bytes discarded while resynchronizing
func (s *Statistics) AddNoiseBytes(n uint64) {
	atomic.AddUint64(&s.numNoiseBytes, n)
}

// GetFramesRx returns received frames
func (s *Statistics) GetFramesRx() uint64 {
	return atomic.LoadUint64(&s.numFramesRx)
}

// GetFramesTx returns transmitted frames
func (s *Statistics) GetFramesTx() uint64 {
	return atomic.LoadUint64(&s.numFramesTx)
}

// GetDroppedSpans returns dropped frame spans
func (s *Statistics) GetDroppedSpans() uint64 {
	return atomic.LoadUint64(&s.numDroppedSpans)
}

// GetCommandFrames returns command/response frames consumed
func (s *Statistics) GetCommandFrames() uint64 {
	return atomic.LoadUint64(&s.numCommandFrames)
}

// GetNoiseBytes returns noise bytes discarded
func (s *Statistics) GetNoiseBytes() uint64 {
	return atomic.LoadUint64(&s.numNoiseBytes)
}

// Reset resets all statistics
func (s *Statistics) Reset() {
	atomic.StoreUint64(&s.numFramesRx, 0)
	atomic.StoreUint64(&s.numFramesTx, 0)
	atomic.StoreUint64(&s.numDroppedSpans, 0)
	atomic.StoreUint64(&s.numCommandFrames, 0)
	atomic.StoreUint64(&s.numNoiseBytes, 0)
}
