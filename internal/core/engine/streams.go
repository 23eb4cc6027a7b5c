package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/events"
	"github.com/zeusync/paramsync/internal/core/observability/log"
)

// CreateStreams (re)configures the output streams. It polls the device
// until at least one stream exists, then syncs the capture sources, queues
// a scratch pool clear on the render timeline and resets the frame state.
func (e *Engine) CreateStreams(ctx context.Context) error {
	if e.State() == StateTerminated {
		return ErrTerminated
	}
	e.setState(StateReconfiguring)

	streams, err := e.waitForStreams(ctx)
	if err != nil {
		return err
	}
	e.logger.Info("found streams", log.Int("streams", len(streams)))

	e.mu.Lock()
	active := e.active
	e.mu.Unlock()

	var templates []*capture.Template
	if active != nil {
		templates = capture.Templates(active)
	}
	if _, err := e.rig.Sync(streams, templates); err != nil {
		e.logger.Warn("some capture sources could not be created", log.Error(err))
	}

	// Scratch shapes may not match the new streams.
	if err := e.timeline.Submit(func(context.Context) error {
		e.pool.Clear()
		return nil
	}); err != nil {
		e.logger.Warn("failed to queue scratch pool clear", log.Error(err))
	}

	e.mu.Lock()
	e.streams = streams
	e.latest = device.FrameData{}
	e.pendingGPU = false
	e.awaiting = false
	e.mu.Unlock()

	e.metrics.RecordReconfigure()
	e.setState(StateStreamsActive)

	if err := e.bus.Publish(events.NewEvent(events.StreamsChanged, "engine", events.StreamsChangedData{Streams: streams})); err != nil {
		e.logger.Warn("streams changed handlers failed", log.Error(err))
	}
	return nil
}

func (e *Engine) waitForStreams(ctx context.Context) ([]device.StreamDescription, error) {
	for {
		streams, err := e.svc.GetOutputChannels(ctx)
		if err != nil {
			e.logger.Error("failed to get streams", log.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrStreams, err)
		}
		if len(streams) > 0 {
			return streams, nil
		}

		e.logger.Info("waiting for streams", log.Duration("retry", e.cfg.StreamRetryDelay))
		timer := time.NewTimer(e.cfg.StreamRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
