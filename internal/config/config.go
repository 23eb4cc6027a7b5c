// Package config loads the paramsync YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/zeusync/paramsync/internal/core/device/bridge"
	"github.com/zeusync/paramsync/internal/core/engine"
	"github.com/zeusync/paramsync/internal/core/observability/log"
	"github.com/zeusync/paramsync/internal/core/schema"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Texture backends for the scratch pool.
const (
	TextureMemory = "memory"
	TextureWebGPU = "webgpu"
)

type Config struct {
	SceneControl         schema.SceneControl `yaml:"scene_control"`
	SchemaPath           string              `yaml:"schema_path"`
	EnableDebugPresenter bool                `yaml:"enable_debug_presenter"`
	LogLevel             log.Level           `yaml:"log_level"`
	Device               Device              `yaml:"device"`
	Engine               Engine              `yaml:"engine"`
}

// Device locates the render-control device. An empty address means no
// device: schemas are written to SchemaPath instead.
type Device struct {
	Address        string        `yaml:"address"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	InsecureTLS    bool          `yaml:"insecure_tls"`
	MaxMessageSize int           `yaml:"max_message_size"`
}

type Engine struct {
	AwaitTimeout         time.Duration `yaml:"await_timeout"`
	StreamRetryDelay     time.Duration `yaml:"stream_retry_delay"`
	MaxPendingImageFills int           `yaml:"max_pending_image_fills"`
	RenderInterval       time.Duration `yaml:"render_interval"`
	// TextureBackend selects where scratch textures live: host memory or a
	// headless WebGPU device.
	TextureBackend       string        `yaml:"texture_backend"`
	ForceFallbackAdapter bool          `yaml:"force_fallback_adapter"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	eng := engine.DefaultConfig()
	dev := bridge.DefaultConfig()
	return Config{
		SceneControl: schema.Manual,
		SchemaPath:   "schema.json",
		LogLevel:     log.LevelInfo,
		Device: Device{
			ConnectTimeout: dev.ConnectTimeout,
			RequestTimeout: dev.RequestTimeout,
			MaxMessageSize: dev.MaxMessageSize,
		},
		Engine: Engine{
			AwaitTimeout:         eng.AwaitTimeout,
			StreamRetryDelay:     eng.StreamRetryDelay,
			MaxPendingImageFills: eng.MaxPendingImageFills,
			RenderInterval:       eng.RenderInterval,
			TextureBackend:       TextureMemory,
		},
	}
}

// LoadYAML decodes r over the defaults and validates the result. Unknown
// keys are rejected.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadYAML(f)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Device.Address != "" {
		u, err := url.Parse(c.Device.Address)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("device.address: %v", err))
		case u.Scheme != "ws" && u.Scheme != "wss" && u.Scheme != "quic":
			errs = append(errs, fmt.Errorf("device.address: scheme %q is not ws, wss or quic", u.Scheme))
		case u.Host == "":
			errs = append(errs, errors.New("device.address: missing host"))
		}
	}
	if c.Device.ConnectTimeout < 0 || c.Device.RequestTimeout < 0 {
		errs = append(errs, errors.New("device: timeouts must not be negative"))
	}
	if c.Engine.AwaitTimeout <= 0 {
		errs = append(errs, errors.New("engine.await_timeout must be positive"))
	}
	if c.Engine.StreamRetryDelay <= 0 {
		errs = append(errs, errors.New("engine.stream_retry_delay must be positive"))
	}
	if c.Engine.MaxPendingImageFills <= 0 {
		errs = append(errs, errors.New("engine.max_pending_image_fills must be positive"))
	}
	if c.Engine.RenderInterval <= 0 {
		errs = append(errs, errors.New("engine.render_interval must be positive"))
	}
	if b := c.Engine.TextureBackend; b != TextureMemory && b != TextureWebGPU {
		errs = append(errs, fmt.Errorf("engine.texture_backend: %q is not memory or webgpu", b))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		Mode:                 c.SceneControl,
		AwaitTimeout:         c.Engine.AwaitTimeout,
		StreamRetryDelay:     c.Engine.StreamRetryDelay,
		MaxPendingImageFills: c.Engine.MaxPendingImageFills,
		RenderInterval:       c.Engine.RenderInterval,
		DebugPresenter:       c.EnableDebugPresenter,
	}
}

func (c Config) BridgeConfig() bridge.Config {
	return bridge.Config{
		Address:        c.Device.Address,
		ConnectTimeout: c.Device.ConnectTimeout,
		RequestTimeout: c.Device.RequestTimeout,
		InsecureTLS:    c.Device.InsecureTLS,
		MaxMessageSize: c.Device.MaxMessageSize,
	}
}
