package engine

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/schema"
)

// Tick runs one step of the sync loop: wait for the next frame and apply
// its numeric and text values. It returns device.ErrQuit once the device
// asks to shut down, device.ErrUnavailable once the device is gone, and the
// context error when ctx is done. Every other failure is logged and the
// tick waits StreamRetryDelay before returning, so the next tick tries
// again.
func (e *Engine) Tick(ctx context.Context) error {
	switch e.State() {
	case StateTerminated:
		return ErrTerminated
	case StateUninitialized:
		if err := e.CreateStreams(ctx); err != nil {
			return e.tickError(ctx, err)
		}
	}

	e.setAwaiting(true)
	start := time.Now()
	frame, err := e.svc.AwaitFrameData(ctx, e.cfg.AwaitTimeout)
	e.setAwaiting(false)

	switch {
	case err == nil:
	case errors.Is(err, device.ErrQuit):
		e.logger.Info("device requested quit")
		e.setState(StateTerminated)
		return device.ErrQuit
	case errors.Is(err, device.ErrStreamsChanged):
		e.logger.Info("streams changed")
		if err := e.CreateStreams(ctx); err != nil {
			return e.tickError(ctx, err)
		}
		return nil
	case errors.Is(err, device.ErrTimeout):
		e.metrics.RecordTimeout()
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, device.ErrUnavailable):
		e.logger.Error("device unavailable", log.Error(err))
		e.metrics.RecordError(err)
		return err
	default:
		e.logger.Warn("failed to await frame", log.Error(err))
		e.metrics.RecordError(err)
		return e.backoff(ctx)
	}

	e.mu.Lock()
	e.latest = frame
	e.pendingGPU = false
	loaded := e.sceneIndex
	e.mu.Unlock()

	if e.cfg.Mode == schema.Selection && int(frame.Scene) != loaded && int(frame.Scene) < len(e.schema.Scenes) {
		e.switchScene(ctx, int(frame.Scene))
		return nil
	}

	if e.applyCPU(ctx, frame) {
		e.metrics.RecordFrame(time.Since(start))
	}
	return nil
}

// tickError keeps cancellation and a lost device visible. Everything else
// is recorded and retried after a backoff.
func (e *Engine) tickError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.metrics.RecordError(err)
	if errors.Is(err, device.ErrUnavailable) {
		return err
	}
	return e.backoff(ctx)
}

// backoff waits StreamRetryDelay, or until ctx is done.
func (e *Engine) backoff(ctx context.Context) error {
	timer := time.NewTimer(e.cfg.StreamRetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) setAwaiting(v bool) {
	e.mu.Lock()
	e.awaiting = v
	e.mu.Unlock()
}

func (e *Engine) switchScene(ctx context.Context, index int) {
	if e.loader == nil {
		e.logger.Warn("device requested another scene but no scene loader is set", log.Int("index", index))
		return
	}
	e.logger.Info("switching scene", log.Int("index", index))
	if err := e.loader.LoadScene(ctx, index); err != nil {
		e.logger.Warn("failed to load scene", log.Int("index", index), log.Error(err))
		e.metrics.RecordError(err)
	}
}

// applyCPU copies the frame values into the scene buffers and hands them to
// the bound adapters in schema order. It reports whether the frame was
// applied.
func (e *Engine) applyCPU(ctx context.Context, frame device.FrameData) bool {
	idx := int(frame.Scene)
	if idx >= len(e.schema.Scenes) {
		e.metrics.RecordDroppedFrame()
		return false
	}
	block := &e.schema.Scenes[idx]
	counts := block.Counts()

	numeric, text, err := e.svc.GetFrameNumericAndText(ctx, block.Hash, counts.Numeric, counts.Text)
	if err != nil {
		e.logger.Warn("failed to get frame parameters", log.Int("scene", idx), log.Error(err))
		e.metrics.RecordError(err)
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	sd := e.data[idx]
	if err := sd.SetFrame(numeric, text); err != nil {
		e.logger.Warn("frame parameters do not match schema", log.Int("scene", idx), log.Error(err))
		e.metrics.RecordError(err)
		return false
	}
	if err := sd.ApplyCPU(); err != nil {
		e.logger.Warn("failed to apply parameters", log.Int("scene", idx), log.Error(err))
	}
	e.pendingGPU = true
	return true
}
