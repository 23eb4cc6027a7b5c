package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

var _ Collector = (*AsyncCollector)(nil)

// AsyncCollector aggregates events on its own goroutine so the sync loop
// never waits on bookkeeping. Events are dropped when the buffer is full.
type AsyncCollector struct {
	events    chan Event
	batchSize int
	flush     time.Duration

	closeMu sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64

	mu       sync.RWMutex
	snapshot Snapshot
}

type Option func(*AsyncCollector)

func WithBatchSize(n int) Option {
	return func(c *AsyncCollector) {
		c.batchSize = max(1, n)
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(c *AsyncCollector) {
		c.flush = d
	}
}

func NewAsyncCollector(bufferSize int, opts ...Option) *AsyncCollector {
	c := &AsyncCollector{
		events:    make(chan Event, bufferSize),
		batchSize: 100,
		flush:     100 * time.Millisecond,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snapshot.StartedAt = time.Now()
	go c.processEvents()
	return c
}

func (c *AsyncCollector) record(e Event) {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()
	if c.closed {
		return
	}
	e.Timestamp = time.Now()
	select {
	case c.events <- e:
	default:
		c.dropped.Add(1)
	}
}

func (c *AsyncCollector) RecordFrame(latency time.Duration) {
	c.record(Event{Type: EventFrame, Latency: latency})
}

func (c *AsyncCollector) RecordTimeout()        { c.record(Event{Type: EventTimeout}) }
func (c *AsyncCollector) RecordError(err error) { c.record(Event{Type: EventError, Error: err}) }
func (c *AsyncCollector) RecordDroppedFrame()   { c.record(Event{Type: EventDroppedFrame}) }
func (c *AsyncCollector) RecordSkippedImage()   { c.record(Event{Type: EventSkippedImage}) }
func (c *AsyncCollector) RecordReconfigure()    { c.record(Event{Type: EventReconfigure}) }

func (c *AsyncCollector) Snapshot() Snapshot {
	c.mu.RLock()
	s := c.snapshot
	c.mu.RUnlock()
	s.DroppedEvents = c.dropped.Load()
	return s
}

// Close stops accepting events and returns once the buffered ones are
// applied.
func (c *AsyncCollector) Close() error {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		<-c.done
		return nil
	}
	c.closed = true
	close(c.events)
	c.closeMu.Unlock()

	<-c.done
	return nil
}

func (c *AsyncCollector) processEvents() {
	defer close(c.done)

	batch := make([]Event, 0, c.batchSize)
	ticker := time.NewTicker(c.flush)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				c.processBatch(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				c.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				c.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (c *AsyncCollector) processBatch(batch []Event) {
	if len(batch) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range batch {
		c.apply(e)
	}
}

func (c *AsyncCollector) apply(e Event) {
	s := &c.snapshot
	switch e.Type {
	case EventFrame:
		s.Frames++
		s.LastFrame = e.Timestamp
		if s.Frames == 1 {
			s.AvgLatency = e.Latency
		} else {
			// exponential moving average
			s.AvgLatency = time.Duration(float64(s.AvgLatency)*0.9 + float64(e.Latency)*0.1)
		}
	case EventTimeout:
		s.Timeouts++
	case EventError:
		s.Errors++
		if e.Error != nil {
			s.LastError = e.Error.Error()
		}
	case EventDroppedFrame:
		s.DroppedFrames++
	case EventSkippedImage:
		s.SkippedImages++
	case EventReconfigure:
		s.Reconfigures++
	}
}
