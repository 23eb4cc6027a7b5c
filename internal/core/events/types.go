package events

import "github.com/zeusync/paramsync/internal/core/device"

const (
	SceneLoaded    = "scene.loaded"
	StreamsChanged = "streams.changed"
)

// SceneLoadedData is the payload of SceneLoaded.
type SceneLoadedData struct {
	Name  string
	Index int
	Hash  uint64
}

// StreamsChangedData is the payload of StreamsChanged.
type StreamsChangedData struct {
	Streams []device.StreamDescription
}
