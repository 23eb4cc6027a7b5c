package injector

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/paramsync/internal/config"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/device/bridge"
	"github.com/zeusync/paramsync/internal/core/device/devicetest"
	"github.com/zeusync/paramsync/internal/core/engine"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

func TestInitializeEngine(t *testing.T) {
	svc := devicetest.New(schema.Default())
	srv := httptest.NewServer(bridge.NewServer(svc))
	defer srv.Close()

	cfg := config.Default()
	cfg.LogLevel = log.LevelError
	cfg.Device.Address = "ws" + strings.TrimPrefix(srv.URL, "http")

	e, cleanup, err := InitializeEngine(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StateUninitialized, e.State())
	assert.Len(t, e.Schema().Scenes, 1)

	cleanup()
	assert.Equal(t, engine.StateTerminated, e.State())
}

func TestInitializeEngine_NoDevice(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Address = "ws://127.0.0.1:1"

	_, _, err := InitializeEngine(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestProvideAllocator(t *testing.T) {
	cfg := config.Default()
	alloc, cleanup, err := ProvideAllocator(cfg, log.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &texture.MemoryAllocator{}, alloc)

	cfg.Engine.TextureBackend = "vulkan"
	_, _, err = ProvideAllocator(cfg, log.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestProvideDevice_WritesThroughAllocator(t *testing.T) {
	serverAlloc := texture.NewMemoryAllocator()
	img := device.ImageFrameData{ImageID: 3, Width: 1, Height: 1, Format: texture.FormatRGBA8}
	pixels := []byte{9, 8, 7, 6}

	svc := devicetest.New(schema.Default())
	svc.SetPixels(img.ImageID, pixels, serverAlloc)
	srv := httptest.NewServer(bridge.NewServer(svc, bridge.WithAllocator(serverAlloc)))
	defer srv.Close()

	cfg := config.Default()
	cfg.Device.Address = "ws" + strings.TrimPrefix(srv.URL, "http")
	logger := log.NewNop()

	alloc, cleanupAlloc, err := ProvideAllocator(cfg, logger)
	require.NoError(t, err)
	defer cleanupAlloc()
	client, cleanupDevice, err := ProvideDevice(context.Background(), cfg, alloc, logger)
	require.NoError(t, err)
	defer cleanupDevice()

	pool := ProvidePool(alloc, logger)
	dst, err := pool.Get(img.Descriptor())
	require.NoError(t, err)
	require.NoError(t, client.FillImageResource(context.Background(), img.ImageID, dst))
	assert.Equal(t, pixels, dst.Data)

	// Textures the allocator does not own are refused by its writer.
	foreign := &texture.Texture{Descriptor: img.Descriptor(), Handle: 1 << 20, Data: make([]byte, 4)}
	assert.ErrorIs(t, client.FillImageResource(context.Background(), img.ImageID, foreign), texture.ErrUnknownTexture)
}
