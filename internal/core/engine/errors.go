package engine

import "errors"

var (
	ErrNoDevice        = errors.New("engine: no device service")
	ErrLoadSchema      = errors.New("engine: failed to load schema")
	ErrTerminated      = errors.New("engine: terminated")
	ErrSceneOutOfRange = errors.New("engine: scene index outside loaded schema")
	ErrStreams         = errors.New("engine: failed to get output streams")
)
