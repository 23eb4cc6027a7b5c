package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/capture"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/device/devicetest"
	"github.com/zeusync/paramsync/internal/core/events"
	"github.com/zeusync/paramsync/internal/core/member"
	"github.com/zeusync/paramsync/internal/core/metrics"
	"github.com/zeusync/paramsync/internal/core/params"
	"github.com/zeusync/paramsync/internal/core/scene"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/schema/builder"
	"github.com/zeusync/paramsync/internal/core/texture"
)

type props struct {
	Gain  float32
	Title string
	Left  *texture.RenderTarget
	Right *texture.RenderTarget
}

type fixture struct {
	props  *props
	scenes []*scene.Scene
	schema *schema.Schema
	svc    *devicetest.Service
	alloc  *texture.MemoryAllocator
}

var mainStream = device.StreamDescription{Handle: 1, Name: "main_stream", Channel: "main", Width: 64, Height: 32, Format: texture.FormatBGRA8}

// newFixture builds n scenes, each with a parameter list driving the given
// members of its own props object, and generates the schema for them.
func newFixture(t *testing.T, mode schema.SceneControl, n int, members ...string) *fixture {
	t.Helper()
	fx := &fixture{alloc: texture.NewMemoryAllocator()}
	for i := range n {
		p := &props{Left: texture.NewRenderTarget("left"), Right: texture.NewRenderTarget("right")}
		if i == 0 {
			fx.props = p
		}
		l := params.NewList()
		for _, m := range members {
			_, err := l.AddParameter(l.DefaultGroup(), m, params.Target{Object: "Props", Member: member.Field(m)})
			require.NoError(t, err)
		}
		fx.scenes = append(fx.scenes, scene.New([]string{"Main", "Second", "Third"}[i], i,
			scene.NewObject("Params", l),
			scene.NewObject("Props", p),
			scene.NewObject("Cam", capture.NewTemplate("main", true)),
		))
	}

	s, err := builder.New(adapter.NewDefaultRegistry(), builder.WithMode(mode)).Build(fx.scenes)
	require.NoError(t, err)
	fx.schema = s
	fx.svc = devicetest.New(s)
	fx.svc.ScriptChannels([]device.StreamDescription{mainStream})
	return fx
}

func (fx *fixture) engine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return fx.engineFor(t, fx.svc, opts...)
}

// engineFor builds the engine around svc, which usually wraps fx.svc.
func (fx *fixture) engineFor(t *testing.T, svc device.Service, opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.AwaitTimeout = time.Millisecond
	cfg.StreamRetryDelay = time.Millisecond
	cfg.RenderInterval = time.Millisecond
	cfg.Mode = schema.Manual
	if len(fx.schema.Scenes) > 1 {
		cfg.Mode = schema.Selection
	}

	all := append([]Option{
		WithConfig(cfg),
		WithPool(texture.NewPool(fx.alloc)),
	}, opts...)
	e, err := New(context.Background(), svc, all...)
	require.NoError(t, err)
	return e
}

func (fx *fixture) hash(i int) uint64 { return fx.schema.Scenes[i].Hash }

func TestNew_RequiresDeviceAndSchema(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDevice)

	svc := devicetest.New(nil)
	_, err = New(context.Background(), svc)
	assert.ErrorIs(t, err, ErrLoadSchema)

	svc = devicetest.New(schema.Default())
	svc.SetLoadError(errors.New("corrupt"))
	_, err = New(context.Background(), svc)
	assert.ErrorIs(t, err, ErrLoadSchema)
}

func TestEngine_TickAppliesNumericAndText(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain", "Title")
	e := fx.engine(t)
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))

	fx.svc.SetFrame(fx.hash(0), []float32{0.5}, []string{"hi"})
	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)))

	ctx := context.Background()
	require.NoError(t, e.Tick(ctx))

	assert.Equal(t, StateStreamsActive, e.State())
	assert.Equal(t, float32(0.5), fx.props.Gain)
	assert.Equal(t, "hi", fx.props.Title)
	assert.Equal(t, []device.StreamDescription{mainStream}, e.Streams())
	assert.Equal(t, fx.hash(0), e.LatestFrame().Hash)
}

func TestEngine_OutOfRangeSceneDropped(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	collector := metrics.NewAsyncCollector(16)
	e := fx.engine(t, WithMetrics(collector))
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))
	fx.props.Gain = 0.25

	fx.svc.SetFrame(fx.hash(0), []float32{0.9}, nil)
	fx.svc.ScriptAwait(devicetest.Frame(3, fx.hash(0)))
	require.NoError(t, e.Tick(context.Background()))

	assert.Equal(t, float32(0.25), fx.props.Gain)
	assert.Zero(t, fx.svc.Calls().Numeric)
	require.NoError(t, collector.Close())
	assert.Equal(t, uint64(1), collector.Snapshot().DroppedFrames)
}

func TestEngine_StreamsChangedReconfiguresOnce(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	e := fx.engine(t)
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))

	var changed int
	_, err := e.Bus().Subscribe(events.StreamsChanged, func(events.Event) error {
		changed++
		return nil
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, e.CreateStreams(ctx))
	before := e.rig.Sources()
	channelCalls := fx.svc.Calls().Channels

	extra := device.StreamDescription{Handle: 2, Name: "side", Channel: "side", Width: 32, Height: 32, Format: texture.FormatRGBA8}
	fx.svc.ScriptChannels([]device.StreamDescription{mainStream, extra})
	fx.svc.ScriptAwait(devicetest.Signal(device.ErrStreamsChanged))
	require.NoError(t, e.Tick(ctx))

	assert.Equal(t, channelCalls+1, fx.svc.Calls().Channels)
	assert.Equal(t, 2, changed)
	after := e.rig.Sources()
	require.Len(t, after, 2)
	assert.Same(t, before[0], after[0])
	assert.Equal(t, StateStreamsActive, e.State())
	assert.Equal(t, device.FrameData{}, e.LatestFrame())

	fx.svc.SetFrame(fx.hash(0), []float32{0.75}, nil)
	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)))
	require.NoError(t, e.Tick(ctx))
	assert.Equal(t, float32(0.75), fx.props.Gain)
}

func TestEngine_CreateStreamsWaitsForChannels(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	fx.svc = devicetest.New(fx.schema)
	fx.svc.ScriptChannels(nil, nil, []device.StreamDescription{mainStream})
	e := fx.engine(t)

	require.NoError(t, e.CreateStreams(context.Background()))
	assert.Equal(t, 3, fx.svc.Calls().Channels)
	assert.Len(t, e.Streams(), 1)
}

func TestEngine_CreateStreamsCancelled(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	fx.svc = devicetest.New(fx.schema)
	e := fx.engine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.CreateStreams(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateReconfiguring, e.State())
}

func TestEngine_QuitTerminates(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	e := fx.engine(t)
	fx.svc.ScriptAwait(devicetest.Signal(device.ErrQuit))

	ctx := context.Background()
	assert.ErrorIs(t, e.Tick(ctx), device.ErrQuit)
	assert.Equal(t, StateTerminated, e.State())
	assert.ErrorIs(t, e.Tick(ctx), ErrTerminated)
	assert.ErrorIs(t, e.CreateStreams(ctx), ErrTerminated)
}

func TestEngine_RecoverableErrorsSkipTick(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	e := fx.engine(t)
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))
	ctx := context.Background()

	fx.svc.ScriptAwait(
		devicetest.Signal(device.StatusInvalidHandle.Err("await")),
		devicetest.Signal(device.ErrTimeout),
		devicetest.Frame(0, fx.hash(0)),
	)
	fx.svc.SetFrameError(fx.hash(0), device.StatusBufferOverflow.Err("get frame parameters"))

	for range 3 {
		require.NoError(t, e.Tick(ctx))
	}
	assert.Zero(t, fx.props.Gain)
	assert.Equal(t, StateStreamsActive, e.State())
}

type recordingLoader struct {
	mu      sync.Mutex
	engine  *Engine
	scenes  []*scene.Scene
	indices []int
}

func (l *recordingLoader) LoadScene(_ context.Context, index int) error {
	l.mu.Lock()
	l.indices = append(l.indices, index)
	l.mu.Unlock()
	return l.engine.LoadScene(l.scenes[index])
}

func TestEngine_SelectionSwitchesScene(t *testing.T) {
	fx := newFixture(t, schema.Selection, 2, "Gain")
	loader := &recordingLoader{scenes: fx.scenes}
	e := fx.engine(t, WithSceneLoader(loader))
	loader.engine = e
	require.NoError(t, e.LoadScene(fx.scenes[0]))

	second := scene.Collect[*props](fx.scenes[1])[0]
	fx.svc.SetFrame(fx.hash(1), []float32{0.5}, nil)
	fx.svc.ScriptAwait(devicetest.Frame(1, fx.hash(1)), devicetest.Frame(1, fx.hash(1)))

	ctx := context.Background()
	require.NoError(t, e.Tick(ctx))
	assert.Equal(t, []int{1}, loader.indices)
	assert.Zero(t, second.Gain)
	_, idx := e.ActiveScene()
	assert.Equal(t, 1, idx)

	require.NoError(t, e.Tick(ctx))
	assert.Equal(t, float32(0.5), second.Gain)
	assert.Equal(t, []int{1}, loader.indices)
}

func TestEngine_ImageFills(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain", "Left", "Right")
	e := fx.engine(t)
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))

	desc := device.ImageFrameData{ImageID: 10, Width: 2, Height: 1, Format: texture.FormatRGBA8}
	fx.svc.SetFrame(fx.hash(0), []float32{0.1}, nil)
	fx.svc.SetImages(fx.hash(0), desc, device.ImageFrameData{ImageID: 11, Width: 2, Height: 1})
	fx.svc.SetPixels(10, []byte{1, 2, 3, 4, 5, 6, 7, 8}, fx.alloc)

	ctx := context.Background()
	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)))
	require.NoError(t, e.Tick(ctx))
	e.Timeline().Frame(ctx, e.BeginRender)

	d, px := fx.props.Left.Snapshot()
	assert.Equal(t, desc.Descriptor(), d)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, px)
	assert.Zero(t, fx.props.Right.Blits())
	assert.Len(t, fx.svc.Fills(), 1)

	// Nothing new to apply until the next frame arrives.
	e.Timeline().Frame(ctx, e.BeginRender)
	assert.Equal(t, 1, fx.props.Left.Blits())

	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)))
	require.NoError(t, e.Tick(ctx))
	e.Timeline().Frame(ctx, e.BeginRender)
	assert.Equal(t, 2, fx.props.Left.Blits())
	assert.Equal(t, 1, fx.alloc.Created())
}

func TestEngine_ImageFillLimit(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Left", "Right")
	cfg := DefaultConfig()
	cfg.AwaitTimeout = time.Millisecond
	cfg.MaxPendingImageFills = 1
	e := fx.engine(t, WithConfig(cfg))
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))

	fx.svc.SetFrame(fx.hash(0), nil, nil)
	fx.svc.SetImages(fx.hash(0),
		device.ImageFrameData{ImageID: 1, Width: 4, Height: 4, Format: texture.FormatRGBA8},
		device.ImageFrameData{ImageID: 2, Width: 8, Height: 8, Format: texture.FormatRGBA8},
	)
	ctx := context.Background()
	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)))
	require.NoError(t, e.Tick(ctx))
	e.Timeline().Frame(ctx, e.BeginRender)

	assert.Equal(t, 1, fx.props.Left.Blits())
	assert.Zero(t, fx.props.Right.Blits())
	assert.Zero(t, e.slots.InUse())
}

func TestEngine_StreamsChangedClearsPool(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Left")
	e := fx.engine(t)
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))
	ctx := context.Background()

	fx.svc.SetFrame(fx.hash(0), nil, nil)
	fx.svc.SetImages(fx.hash(0), device.ImageFrameData{ImageID: 1, Width: 4, Height: 4, Format: texture.FormatRGBA8})
	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)))
	require.NoError(t, e.Tick(ctx))
	e.Timeline().Frame(ctx, e.BeginRender)
	assert.Equal(t, 1, e.pool.Len())

	fx.svc.ScriptAwait(devicetest.Signal(device.ErrStreamsChanged))
	require.NoError(t, e.Tick(ctx))
	e.Timeline().Frame(ctx, e.BeginRender)
	assert.Zero(t, e.pool.Len())
	assert.Zero(t, fx.alloc.Live())
}

func TestEngine_RunStopsOnQuit(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	e := fx.engine(t)
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))

	fx.svc.SetFrame(fx.hash(0), []float32{1}, nil)
	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)), devicetest.Signal(device.ErrQuit))

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, float32(1), fx.props.Gain)
	assert.Equal(t, StateTerminated, e.State())

	require.NoError(t, e.Close())
	assert.True(t, fx.svc.Closed())
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	e := fx.engine(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	assert.Eventually(t, func() bool { return e.Timeline().Frames() > 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

type failingAwait struct {
	*devicetest.Service
	err   error
	calls atomic.Int32
}

func (d *failingAwait) AwaitFrameData(context.Context, time.Duration) (device.FrameData, error) {
	d.calls.Add(1)
	return device.FrameData{}, d.err
}

func TestEngine_FailedAwaitBacksOff(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	cfg := DefaultConfig()
	cfg.AwaitTimeout = time.Millisecond
	cfg.StreamRetryDelay = 50 * time.Millisecond
	e := fx.engine(t, WithConfig(cfg))
	require.NoError(t, e.CreateStreams(context.Background()))

	fx.svc.ScriptAwait(devicetest.Signal(device.StatusInvalidHandle.Err("await")))
	start := time.Now()
	require.NoError(t, e.Tick(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	fx.svc.ScriptAwait(devicetest.Signal(device.StatusInvalidHandle.Err("await")))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Tick(ctx), context.DeadlineExceeded)
}

func TestEngine_RunPacesFailingDevice(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	svc := &failingAwait{Service: fx.svc, err: device.StatusInvalidHandle.Err("await")}
	cfg := DefaultConfig()
	cfg.StreamRetryDelay = 20 * time.Millisecond
	e := fx.engineFor(t, svc, WithConfig(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.Positive(t, svc.calls.Load())
	assert.LessOrEqual(t, svc.calls.Load(), int32(10))
}

func TestEngine_RunFailsWhenDeviceUnavailable(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Gain")
	svc := &failingAwait{Service: fx.svc, err: fmt.Errorf("await: %w", device.ErrUnavailable)}
	e := fx.engineFor(t, svc)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, device.ErrUnavailable)
	case <-time.After(2 * time.Second):
		t.Fatal("engine kept polling a lost device")
	}
	assert.Equal(t, int32(1), svc.calls.Load())
}

type blockingFill struct {
	*devicetest.Service
	entered chan struct{}
	release chan struct{}
}

func (d *blockingFill) FillImageResource(ctx context.Context, imageID uint64, dst *texture.Texture) error {
	d.entered <- struct{}{}
	<-d.release
	return d.Service.FillImageResource(ctx, imageID, dst)
}

func TestEngine_ImageFillLeavesFrameStateAvailable(t *testing.T) {
	fx := newFixture(t, schema.Manual, 1, "Left")
	svc := &blockingFill{Service: fx.svc, entered: make(chan struct{}, 1), release: make(chan struct{})}
	e := fx.engineFor(t, svc)
	require.NoError(t, e.LoadScene(scene.Merge(schema.DefaultSceneName, fx.scenes...)))

	fx.svc.SetFrame(fx.hash(0), nil, nil)
	fx.svc.SetImages(fx.hash(0), device.ImageFrameData{ImageID: 5, Width: 1, Height: 1, Format: texture.FormatRGBA8})
	fx.svc.SetPixels(5, []byte{1, 2, 3, 4}, fx.alloc)
	fx.svc.ScriptAwait(devicetest.Frame(0, fx.hash(0)))

	ctx := context.Background()
	require.NoError(t, e.Tick(ctx))

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		e.BeginRender(ctx)
	}()

	select {
	case <-svc.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("image fill never started")
	}

	state := make(chan device.FrameData, 1)
	go func() {
		_ = e.Awaiting()
		state <- e.LatestFrame()
	}()
	select {
	case f := <-state:
		assert.Equal(t, fx.hash(0), f.Hash)
	case <-time.After(time.Second):
		t.Fatal("frame state locked while an image was filling")
	}

	close(svc.release)
	<-rendered
	_, px := fx.props.Left.Snapshot()
	assert.Equal(t, []byte{1, 2, 3, 4}, px)
}

func TestEngine_SceneSwitchResyncsCaptureSources(t *testing.T) {
	fx := newFixture(t, schema.Selection, 2, "Gain")
	loader := &recordingLoader{scenes: fx.scenes}
	e := fx.engine(t, WithSceneLoader(loader))
	loader.engine = e
	require.NoError(t, e.LoadScene(fx.scenes[0]))

	ctx := context.Background()
	require.NoError(t, e.CreateStreams(ctx))
	first := capture.Templates(fx.scenes[0])[0]
	second := capture.Templates(fx.scenes[1])[0]
	require.Len(t, e.rig.Sources(), 1)
	assert.Same(t, first, e.rig.Sources()[0].Template())
	assert.True(t, second.Enabled())

	fx.svc.ScriptAwait(devicetest.Frame(1, fx.hash(1)))
	require.NoError(t, e.Tick(ctx))
	require.Equal(t, []int{1}, loader.indices)

	sources := e.rig.Sources()
	require.Len(t, sources, 1)
	assert.Same(t, second, sources[0].Template())
	assert.False(t, second.Enabled())
	assert.Equal(t, mainStream, sources[0].Stream())
}
