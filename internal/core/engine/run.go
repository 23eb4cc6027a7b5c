package engine

import (
	"context"
	"errors"

	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"golang.org/x/sync/errgroup"
)

// Run configures the streams, then drives the sync loop and the render
// timeline until the device quits or ctx is done. A device quit is a clean
// shutdown and returns nil.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.CreateStreams(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			if err := e.Tick(gctx); err != nil {
				return err
			}
		}
	})
	g.Go(func() error {
		return e.timeline.Run(gctx, e.cfg.RenderInterval, e.BeginRender)
	})

	err := g.Wait()
	switch {
	case errors.Is(err, device.ErrQuit):
		e.logger.Info("engine stopped by device")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.logger.Info("engine stopped", log.Error(err))
		return nil
	case err != nil:
		e.logger.Error("engine failed", log.Error(err))
		return err
	}
	return nil
}
