package bridge

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeusync/paramsync/internal/core/device"
	"github.com/zeusync/paramsync/internal/core/texture"
)

// Op names a device operation on the wire.
type Op string

const (
	OpLoadSchema         Op = "load_schema"
	OpSaveSchema         Op = "save_schema"
	OpGetOutputChannels  Op = "get_output_channels"
	OpAwaitFrameData     Op = "await_frame_data"
	OpGetFrameParameters Op = "get_frame_parameters"
	OpGetFrameImages     Op = "get_frame_images"
	OpFillImage          Op = "fill_image"
)

// Request is one client call. Responses carry the same ID, so calls may
// complete out of order.
type Request struct {
	ID      uint64             `msgpack:"id"`
	Session string             `msgpack:"session"`
	Op      Op                 `msgpack:"op"`
	Payload msgpack.RawMessage `msgpack:"payload,omitempty"`
}

type Response struct {
	ID      uint64             `msgpack:"id"`
	Status  device.Status      `msgpack:"status"`
	Message string             `msgpack:"message,omitempty"`
	Payload msgpack.RawMessage `msgpack:"payload,omitempty"`
}

// The schema travels as the same JSON document written to disk, so both
// ends agree on parameter default value types.
type schemaPayload struct {
	JSON []byte `msgpack:"json"`
}

type channelsPayload struct {
	Streams []device.StreamDescription `msgpack:"streams"`
}

type awaitRequest struct {
	Timeout time.Duration `msgpack:"timeout"`
}

type awaitPayload struct {
	Frame device.FrameData `msgpack:"frame"`
}

type parametersRequest struct {
	Hash    uint64 `msgpack:"hash"`
	Numeric int    `msgpack:"numeric"`
	Text    int    `msgpack:"text"`
}

type parametersPayload struct {
	Numeric []float32 `msgpack:"numeric"`
	Text    []string  `msgpack:"text"`
}

type imagesRequest struct {
	Hash  uint64 `msgpack:"hash"`
	Count int    `msgpack:"count"`
}

type imagesPayload struct {
	Images []device.ImageFrameData `msgpack:"images"`
}

type fillRequest struct {
	ImageID uint64         `msgpack:"imageId"`
	Width   uint32         `msgpack:"width"`
	Height  uint32         `msgpack:"height"`
	Format  texture.Format `msgpack:"format"`
	Linear  bool           `msgpack:"linear"`
}

func (r fillRequest) Descriptor() texture.Descriptor {
	return texture.Descriptor{Width: r.Width, Height: r.Height, Format: r.Format, Linear: r.Linear}
}

type fillPayload struct {
	Pixels []byte `msgpack:"pixels"`
}
