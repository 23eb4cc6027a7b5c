package engine

import (
	"errors"
	"fmt"

	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/events"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/scenedata"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// LoadScene makes sc the active scene: its parameter list is bound and the
// scene buffers of its block are rebuilt. When streams are active the
// capture sources are resynced against the templates of sc. In manual mode
// every scene maps to block zero, so sc should be the merged scene.
func (e *Engine) LoadScene(sc *scene.Scene) error {
	index := 0
	if e.cfg.Mode == schema.Selection {
		index = sc.Index
	}
	logger := e.logger.With(log.String("scene", sc.Name), log.Int("index", index))
	if index < 0 || index >= len(e.schema.Scenes) {
		logger.Warn("scene has no block in the loaded schema")
		return fmt.Errorf("%w: %d", ErrSceneOutOfRange, index)
	}
	block := e.schema.Scenes[index]

	var bindings []params.Binding
	if e.presenter != nil {
		pb, err := e.presenter.Bindings(e.registry)
		if err != nil {
			logger.Warn("failed to bind debug presenter", log.Error(err))
		}
		bindings = append(bindings, pb...)
		e.presenter.Load(block, index)
	}

	images := make(map[string]*texture.RenderTarget)
	list, err := params.FindInstance(sc)
	switch {
	case errors.Is(err, params.ErrNoParameterList):
		logger.Warn("no parameter list in scene")
	case err != nil:
		return err
	default:
		if err := list.Bind(sc, e.registry); err != nil {
			logger.Warn("some parameters could not be bound", log.Error(err))
		}
		bindings = append(bindings, list.Bindings()...)
		collectImages(sc, list, images)
	}

	sd := scenedata.New(block, bindings, e.logger)

	e.mu.Lock()
	e.active = sc
	e.sceneIndex = index
	e.data[index] = sd
	e.images = images
	e.pendingGPU = false
	streams := e.streams
	e.mu.Unlock()

	if e.State() == StateStreamsActive {
		if _, err := e.rig.Sync(streams, capture.Templates(sc)); err != nil {
			logger.Warn("some capture sources could not be created", log.Error(err))
		}
	}

	logger.Info("scene loaded", log.Int("bindings", len(bindings)), log.Uint64("hash", block.Hash))
	if err := e.bus.Publish(events.NewEvent(events.SceneLoaded, "engine", events.SceneLoadedData{
		Name:  sc.Name,
		Index: index,
		Hash:  block.Hash,
	})); err != nil {
		logger.Warn("scene loaded handlers failed", log.Error(err))
	}
	return nil
}

// collectImages maps the names of bound image parameters to their render
// targets, for the debug presenter.
func collectImages(sc *scene.Scene, list *params.List, out map[string]*texture.RenderTarget) {
	for _, entry := range list.OrderedForSchema() {
		p := entry.Parameter
		if p.Adapter() == nil {
			continue
		}
		obj, ok := sc.Find(p.Target.Object)
		if !ok {
			continue
		}
		acc, err := member.Resolve(obj.Value, p.Target.Member)
		if err != nil {
			continue
		}
		if rt, err := member.As[*texture.RenderTarget](acc); err == nil && rt.Get() != nil {
			out[p.Name] = rt.Get()
		}
	}
}

// ActiveScene returns the loaded scene and its block index.
func (e *Engine) ActiveScene() (*scene.Scene, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active, e.sceneIndex
}
