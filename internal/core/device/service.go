// Package device defines the contract of the external render-control device.
package device

import (
	"context"
	"time"

	"github.com/zeusync/paramsync/internal/core/schema"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// Service is the device as seen by the engine and the schema generator.
// Implementations report device statuses through the sentinels of this
// package.
type Service interface {
	schema.Loader
	schema.Saver

	// GetOutputChannels may return an empty slice while the device has not
	// configured any stream yet.
	GetOutputChannels(ctx context.Context) ([]StreamDescription, error)

	// AwaitFrameData blocks up to timeout. ErrQuit, ErrStreamsChanged and
	// ErrTimeout are signals, not failures.
	AwaitFrameData(ctx context.Context, timeout time.Duration) (FrameData, error)

	GetFrameNumericAndText(ctx context.Context, hash uint64, numeric, text int) ([]float32, []string, error)
	GetFrameImageDescriptors(ctx context.Context, hash uint64, n int) ([]ImageFrameData, error)

	// FillImageResource schedules a copy of image imageID into dst. The copy
	// is consumed on the render timeline.
	FillImageResource(ctx context.Context, imageID uint64, dst *texture.Texture) error

	Close() error
}
