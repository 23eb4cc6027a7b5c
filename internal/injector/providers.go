package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/zeusync/paramsync/internal/config"
	"github.com/zeusync/paramsync/internal/core/adapter"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/device/bridge"
	"github.com/zeusync/paramsync/internal/core/engine"
	"github.com/zeusync/paramsync/internal/core/metrics"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/texture"
	"github.com/zeusync/paramsync/internal/core/texture/gpu"
)

// MetricsBufferSize is the event buffer of the engine metrics collector.
const MetricsBufferSize = 1024

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideAllocator,
	ProvideDevice,
	wire.Bind(new(device.Service), new(*bridge.Client)),
	ProvideRegistry,
	ProvidePool,
	ProvideMetrics,
	ProvideEngine,
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.LogLevel)
}

// ProvideAllocator opens the texture backend selected by
// engine.texture_backend. The WebGPU device is released by the cleanup.
func ProvideAllocator(cfg config.Config, logger log.Log) (texture.Allocator, func(), error) {
	switch cfg.Engine.TextureBackend {
	case config.TextureMemory, "":
		return texture.NewMemoryAllocator(), func() {}, nil
	case config.TextureWebGPU:
		dev, err := gpu.OpenDevice(cfg.Engine.ForceFallbackAdapter)
		if err != nil {
			logger.Error("failed to open webgpu device", log.Error(err))
			return nil, nil, err
		}
		logger.Info("scratch textures backed by webgpu")
		return dev.Allocator(), dev.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: texture backend %q", config.ErrInvalid, cfg.Engine.TextureBackend)
	}
}

// ProvideDevice dials the configured device. Filled pixels are uploaded
// through alloc when it can write textures.
func ProvideDevice(ctx context.Context, cfg config.Config, alloc texture.Allocator, logger log.Log) (*bridge.Client, func(), error) {
	opts := []bridge.Option{bridge.WithLogger(logger)}
	if w, ok := alloc.(texture.Writer); ok {
		opts = append(opts, bridge.WithWriter(w))
	}
	c, err := bridge.Dial(ctx, cfg.BridgeConfig(), opts...)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func ProvideRegistry() *adapter.Registry {
	return adapter.NewDefaultRegistry()
}

func ProvidePool(alloc texture.Allocator, logger log.Log) *texture.Pool {
	return texture.NewPool(alloc, texture.WithLogger(logger))
}

func ProvideMetrics() (metrics.Collector, func()) {
	c := metrics.NewAsyncCollector(MetricsBufferSize)
	return c, func() { _ = c.Close() }
}

func ProvideEngine(
	ctx context.Context,
	cfg config.Config,
	svc device.Service,
	registry *adapter.Registry,
	pool *texture.Pool,
	collector metrics.Collector,
	loader engine.SceneLoader,
	logger log.Log,
) (*engine.Engine, func(), error) {
	e, err := engine.New(ctx, svc,
		engine.WithConfig(cfg.EngineConfig()),
		engine.WithRegistry(registry),
		engine.WithPool(pool),
		engine.WithMetrics(collector),
		engine.WithSceneLoader(loader),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return e, func() {
		if err := e.Close(); err != nil {
			logger.Warn("failed to close engine", log.Error(err))
		}
	}, nil
}
