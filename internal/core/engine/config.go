package engine

import (
	"time"

	"github.com/zeusync/paramsync/internal/core/schema"
)

type Config struct {
	Mode schema.SceneControl
	// AwaitTimeout bounds every AwaitFrameData call.
	AwaitTimeout time.Duration
	// StreamRetryDelay is the poll interval while the device reports no
	// output streams.
	StreamRetryDelay time.Duration
	// MaxPendingImageFills bounds image fills per rendered frame. Fields
	// beyond the bound are dropped for that frame.
	MaxPendingImageFills int
	RenderInterval       time.Duration
	DebugPresenter       bool
}

func DefaultConfig() Config {
	return Config{
		Mode:                 schema.Manual,
		AwaitTimeout:         500 * time.Millisecond,
		StreamRetryDelay:     time.Second,
		MaxPendingImageFills: 16,
		RenderInterval:       16 * time.Millisecond,
	}
}
