package engine

import "fmt"

// State is the stream lifecycle of the engine.
type State int32

const (
	StateUninitialized State = iota
	StateStreamsActive
	StateReconfiguring
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStreamsActive:
		return "streams_active"
	case StateReconfiguring:
		return "reconfiguring"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
