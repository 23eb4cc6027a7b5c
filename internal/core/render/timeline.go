// Package render serializes GPU side work onto a single render timeline.
package render

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/zeusync/paramsync/internal/core/observability/log"
)

var ErrQueueFull = errors.New("render: command queue full")

// Command is work that must run on the render timeline, such as mutating the
// scratch pool.
type Command func(ctx context.Context) error

// FrameFunc is called once per rendered frame, after pending commands.
type FrameFunc func(ctx context.Context)

const DefaultQueueSize = 64

type Timeline struct {
	queue  chan Command
	frames atomic.Uint64
	logger log.Log
}

type Option func(*Timeline)

func WithQueueSize(n int) Option {
	return func(t *Timeline) {
		t.queue = make(chan Command, max(1, n))
	}
}

func WithLogger(logger log.Log) Option {
	return func(t *Timeline) {
		t.logger = logger
	}
}

func NewTimeline(opts ...Option) *Timeline {
	t := &Timeline{}
	for _, opt := range opts {
		opt(t)
	}
	if t.queue == nil {
		t.queue = make(chan Command, DefaultQueueSize)
	}
	if t.logger == nil {
		t.logger = log.NewNop()
	}
	t.logger = t.logger.With(log.String("component", "render_timeline"))
	return t
}

// Submit queues cmd without blocking.
func (t *Timeline) Submit(cmd Command) error {
	select {
	case t.queue <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// RunPending executes the commands queued so far and returns how many ran.
// Command errors are logged and do not stop the drain.
func (t *Timeline) RunPending(ctx context.Context) int {
	n := 0
	for {
		select {
		case cmd := <-t.queue:
			n++
			if err := cmd(ctx); err != nil {
				t.logger.Warn("render command failed", log.Error(err))
			}
		default:
			return n
		}
	}
}

// Frame runs one rendered frame: pending commands first, then onFrame.
func (t *Timeline) Frame(ctx context.Context, onFrame FrameFunc) {
	t.RunPending(ctx)
	if onFrame != nil {
		onFrame(ctx)
	}
	t.frames.Add(1)
}

// Run renders a frame every interval until ctx is done.
func (t *Timeline) Run(ctx context.Context, interval time.Duration, onFrame FrameFunc) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.logger.Info("render timeline started", log.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			t.RunPending(context.WithoutCancel(ctx))
			t.logger.Info("render timeline stopped", log.Uint64("frames", t.frames.Load()))
			return nil
		case <-ticker.C:
			t.Frame(ctx, onFrame)
		}
	}
}

func (t *Timeline) Frames() uint64 { return t.frames.Load() }

func (t *Timeline) Pending() int { return len(t.queue) }
