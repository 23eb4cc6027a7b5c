package texture

import "errors"

var (
	ErrInvalidDescriptor = errors.New("texture: invalid descriptor")
	ErrPoolClosed        = errors.New("texture: pool closed")
	ErrUnknownTexture    = errors.New("texture: unknown texture")
)
