package engine

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/presenter"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// BeginRender applies image parameters of the latest applied frame. It runs
// on the render timeline once per rendered frame and is the only writer of
// the scratch pool. Device calls run without holding the frame state lock;
// the filled textures are handed to the scene buffers afterwards, unless the
// scene was reloaded meanwhile.
func (e *Engine) BeginRender(ctx context.Context) {
	e.mu.Lock()
	if !e.pendingGPU {
		e.mu.Unlock()
		return
	}
	e.pendingGPU = false
	idx := int(e.latest.Scene)
	if idx >= len(e.data) {
		e.mu.Unlock()
		return
	}
	hash := e.schema.Scenes[idx].Hash
	sd := e.data[idx]
	e.mu.Unlock()

	n := sd.Counts().Image
	if n == 0 {
		return
	}

	images, err := e.svc.GetFrameImageDescriptors(ctx, hash, n)
	if err != nil {
		e.logger.Warn("failed to get frame images", log.Int("scene", idx), log.Error(err))
		e.metrics.RecordError(err)
		return
	}

	acquired := 0
	defer func() {
		for range acquired {
			e.slots.Release()
		}
	}()

	filled := make([]*texture.Texture, len(images))
	for i, img := range images {
		fields := []log.Field{log.Int("scene", idx), log.Int("image", i), log.Uint64("image_id", img.ImageID)}
		if !img.Format.Valid() {
			e.logger.Warn("skipping image parameter with invalid format", append(fields, log.Stringer("format", img.Format))...)
			e.metrics.RecordSkippedImage()
			continue
		}
		if !e.slots.TryAcquire() {
			e.logger.Warn("image fill limit reached, dropping update", fields...)
			e.metrics.RecordSkippedImage()
			continue
		}
		acquired++

		tex, err := e.pool.Get(img.Descriptor())
		if err != nil {
			e.logger.Warn("failed to get scratch texture", append(fields, log.Error(err))...)
			e.metrics.RecordSkippedImage()
			continue
		}
		if err := e.svc.FillImageResource(ctx, img.ImageID, tex); err != nil {
			e.logger.Warn("failed to fill image", append(fields, log.Error(err))...)
			e.metrics.RecordSkippedImage()
			continue
		}
		filled[i] = tex
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.data[idx] != sd {
		e.logger.Debug("scene reloaded while filling images", log.Int("scene", idx))
		return
	}
	sd.ClearImages()
	for i, tex := range filled {
		if tex == nil {
			continue
		}
		if err := sd.SetImage(i, tex); err != nil {
			e.logger.Warn("image index outside scene buffers", log.Int("scene", idx), log.Int("image", i), log.Error(err))
		}
	}
	if err := sd.ApplyGPU(); err != nil {
		e.logger.Warn("failed to apply image parameters", log.Int("scene", idx), log.Error(err))
	}
}

// Present resolves what the debug window shows for a window of the given
// size. It returns the zero View when the presenter is disabled.
func (e *Engine) Present(window mgl32.Vec2) presenter.View {
	if e.presenter == nil {
		return presenter.View{}
	}
	e.mu.Lock()
	images := e.images
	e.mu.Unlock()
	return e.presenter.Present(e.rig.Sources(), images, window)
}
