// Package metrics collects engine counters off the hot path.
package metrics

import "time"

// Collector records engine activity. Implementations must never block the
// caller.
type Collector interface {
	RecordFrame(latency time.Duration)
	RecordTimeout()
	RecordError(err error)
	RecordDroppedFrame()
	RecordSkippedImage()
	RecordReconfigure()
	Snapshot() Snapshot
	Close() error
}

type EventType uint8

const (
	EventFrame EventType = iota
	EventTimeout
	EventError
	EventDroppedFrame
	EventSkippedImage
	EventReconfigure
)

type Event struct {
	Type      EventType
	Latency   time.Duration
	Error     error
	Timestamp time.Time
}

// Snapshot is a point in time copy of the counters.
type Snapshot struct {
	Frames        uint64
	Timeouts      uint64
	Errors        uint64
	DroppedFrames uint64
	SkippedImages uint64
	Reconfigures  uint64
	AvgLatency    time.Duration
	LastFrame     time.Time
	LastError     string
	DroppedEvents uint64
	StartedAt     time.Time
}

// Nop discards everything.
type Nop struct{}

var _ Collector = Nop{}

func (Nop) RecordFrame(time.Duration) {}
func (Nop) RecordTimeout()            {}
func (Nop) RecordError(error)         {}
func (Nop) RecordDroppedFrame()       {}
func (Nop) RecordSkippedImage()       {}
func (Nop) RecordReconfigure()        {}
func (Nop) Snapshot() Snapshot { return Snapshot{} }
func (Nop) Close() error       { return nil }
