// Package engine runs the frame synchronization loop between the device
// and the active scene.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/events"
	"github.com/zeusync/paramsync/internal/core/metrics"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/presenter"
	"github.com/zeusync/paramsync/internal/core/render"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/scenedata"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// SceneLoader switches the active scene when the device requests a block
// other than the loaded one. The loader is expected to call
// Engine.LoadScene once the scene is available.
type SceneLoader interface {
	LoadScene(ctx context.Context, index int) error
}

type Engine struct {
	svc       device.Service
	cfg       Config
	registry  *adapter.Registry
	pool      *texture.Pool
	slots     *texture.FillSlots
	timeline  *render.Timeline
	rig       *capture.Rig
	bus       events.Bus
	metrics   metrics.Collector
	loader    SceneLoader
	presenter *presenter.Presenter
	logger    log.Log

	schema *schema.Schema
	state  atomic.Int32

	// mu guards the frame state shared by the sync loop and the render
	// timeline.
	mu         sync.Mutex
	active     *scene.Scene
	sceneIndex int
	data       []*scenedata.SceneData
	images     map[string]*texture.RenderTarget
	streams    []device.StreamDescription
	latest     device.FrameData
	pendingGPU bool
	awaiting   bool
}

type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

func WithRegistry(r *adapter.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

func WithPool(p *texture.Pool) Option {
	return func(e *Engine) {
		e.pool = p
	}
}

func WithTimeline(t *render.Timeline) Option {
	return func(e *Engine) {
		e.timeline = t
	}
}

func WithRig(r *capture.Rig) Option {
	return func(e *Engine) {
		e.rig = r
	}
}

func WithBus(b events.Bus) Option {
	return func(e *Engine) {
		e.bus = b
	}
}

func WithMetrics(m metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithSceneLoader(l SceneLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

func WithPresenter(p *presenter.Presenter) Option {
	return func(e *Engine) {
		e.presenter = p
	}
}

func WithLogger(logger log.Log) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New loads the schema through svc and sizes the scene buffers. Without a
// device or a schema the engine cannot run and New fails.
func New(ctx context.Context, svc device.Service, opts ...Option) (*Engine, error) {
	if svc == nil {
		return nil, ErrNoDevice
	}

	e := &Engine{svc: svc, cfg: DefaultConfig(), sceneIndex: -1}
	for _, opt := range opts {
		opt(e)
	}
	e.applyDefaults()

	s, err := svc.LoadSchema(ctx)
	if err != nil {
		e.logger.Error("failed to load schema", log.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrLoadSchema, err)
	}
	e.schema = s
	e.data = make([]*scenedata.SceneData, len(s.Scenes))
	for i, block := range s.Scenes {
		e.data[i] = scenedata.New(block, nil, e.logger)
	}
	if e.cfg.DebugPresenter && e.presenter == nil {
		e.presenter = presenter.New()
	}
	if e.presenter != nil {
		e.subscribePresenter()
	}

	e.logger.Info("engine initialized",
		log.Stringer("mode", e.cfg.Mode),
		log.Int("scenes", len(s.Scenes)),
		log.Int("channels", len(s.Channels)),
	)
	return e, nil
}

func (e *Engine) applyDefaults() {
	def := DefaultConfig()
	if e.cfg.AwaitTimeout <= 0 {
		e.cfg.AwaitTimeout = def.AwaitTimeout
	}
	if e.cfg.StreamRetryDelay <= 0 {
		e.cfg.StreamRetryDelay = def.StreamRetryDelay
	}
	if e.cfg.MaxPendingImageFills <= 0 {
		e.cfg.MaxPendingImageFills = def.MaxPendingImageFills
	}
	if e.cfg.RenderInterval <= 0 {
		e.cfg.RenderInterval = def.RenderInterval
	}
	if e.logger == nil {
		e.logger = log.NewNop()
	}
	base := e.logger
	e.logger = base.With(log.String("component", "engine"))
	if e.registry == nil {
		e.registry = adapter.NewDefaultRegistry()
	}
	if e.pool == nil {
		e.pool = texture.NewPool(texture.NewMemoryAllocator(), texture.WithLogger(base))
	}
	if e.timeline == nil {
		e.timeline = render.NewTimeline(render.WithLogger(base))
	}
	if e.rig == nil {
		e.rig = capture.NewRig(capture.WithLogger(base))
	}
	if e.bus == nil {
		e.bus = events.New()
	}
	if e.metrics == nil {
		e.metrics = metrics.Nop{}
	}
	e.slots = texture.NewFillSlots(e.cfg.MaxPendingImageFills)
}

func (e *Engine) subscribePresenter() {
	invalidate := func(events.Event) error {
		e.presenter.Invalidate()
		return nil
	}
	_, _ = e.bus.Subscribe(events.SceneLoaded, invalidate)
	_, _ = e.bus.Subscribe(events.StreamsChanged, invalidate)
}

func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) setState(s State) {
	prev := State(e.state.Swap(int32(s)))
	if prev != s {
		e.logger.Debug("engine state changed", log.Stringer("from", prev), log.Stringer("to", s))
	}
}

func (e *Engine) Schema() *schema.Schema { return e.schema }

func (e *Engine) Bus() events.Bus { return e.bus }

func (e *Engine) Metrics() metrics.Collector { return e.metrics }

func (e *Engine) Timeline() *render.Timeline { return e.timeline }

func (e *Engine) Presenter() *presenter.Presenter { return e.presenter }

// Streams returns the output streams of the current configuration.
func (e *Engine) Streams() []device.StreamDescription {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]device.StreamDescription, len(e.streams))
	copy(out, e.streams)
	return out
}

// LatestFrame returns the last frame descriptor received in the current
// stream configuration.
func (e *Engine) LatestFrame() device.FrameData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}

// Awaiting reports whether the sync loop is blocked on the device.
func (e *Engine) Awaiting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.awaiting
}

// SceneData returns the buffers of block index, or nil.
func (e *Engine) SceneData(index int) *scenedata.SceneData {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.data) {
		return nil
	}
	return e.data[index]
}

// Close terminates the engine and releases the device. Run must have
// returned before Close is called.
func (e *Engine) Close() error {
	e.setState(StateTerminated)
	if err := e.rig.Close(); err != nil {
		e.logger.Warn("failed to close capture sources", log.Error(err))
	}
	e.pool.Close()
	if err := e.metrics.Close(); err != nil {
		e.logger.Warn("failed to close metrics", log.Error(err))
	}
	return e.svc.Close()
}
