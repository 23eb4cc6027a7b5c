package device

import (
	"fmt"
	"time"

	"github.com/zeusync/paramsync/internal/core/texture"
)

// StreamHandle identifies an output stream for the lifetime of a stream
// configuration.
type StreamHandle uint64

// StreamDescription is one output channel the device expects frames for.
type StreamDescription struct {
	Handle    StreamHandle   `msgpack:"handle" json:"handle"`
	Channel   string         `msgpack:"channel" json:"channel"`
	MappingID uint64         `msgpack:"mappingId" json:"mappingId"`
	Viewpoint int32          `msgpack:"viewpoint" json:"viewpoint"`
	Name      string         `msgpack:"name" json:"name"`
	Width     uint32         `msgpack:"width" json:"width"`
	Height    uint32         `msgpack:"height" json:"height"`
	Format    texture.Format `msgpack:"format" json:"format"`
}

func (s StreamDescription) String() string {
	return fmt.Sprintf("%s[%s %dx%d %s]", s.Name, s.Channel, s.Width, s.Height, s.Format)
}

// FrameData is the per-tick descriptor received from AwaitFrameData.
type FrameData struct {
	Tracked        float64 `msgpack:"tTracked" json:"tTracked"`
	LocalTime      float64 `msgpack:"localTime" json:"localTime"`
	LocalTimeDelta float64 `msgpack:"localTimeDelta" json:"localTimeDelta"`
	RateNumerator  uint32  `msgpack:"frameRateNumerator" json:"frameRateNumerator"`
	RateDenom      uint32  `msgpack:"frameRateDenominator" json:"frameRateDenominator"`
	Flags          uint32  `msgpack:"flags" json:"flags"`
	Scene          uint32  `msgpack:"scene" json:"scene"`
	Hash           uint64  `msgpack:"hash" json:"hash"`
}

// FrameRate returns the device frame interval, or zero when unknown.
func (f FrameData) FrameRate() time.Duration {
	if f.RateNumerator == 0 {
		return 0
	}
	return time.Duration(float64(time.Second) * float64(f.RateDenom) / float64(f.RateNumerator))
}

// ImageFrameData describes one image parameter of a frame.
type ImageFrameData struct {
	ImageID uint64         `msgpack:"imageId" json:"imageId"`
	Width   uint32         `msgpack:"width" json:"width"`
	Height  uint32         `msgpack:"height" json:"height"`
	Format  texture.Format `msgpack:"format" json:"format"`
	Linear  bool           `msgpack:"linear" json:"linear"`
}

func (d ImageFrameData) Descriptor() texture.Descriptor {
	return texture.Descriptor{Width: d.Width, Height: d.Height, Format: d.Format, Linear: d.Linear}
}
