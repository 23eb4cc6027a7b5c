package member

import "errors"

var (
	ErrInvalidDescriptor = errors.New("member: invalid descriptor")
	ErrNilTarget         = errors.New("member: nil target")
	ErrNotFound          = errors.New("member: not found")
	ErrReadOnly          = errors.New("member: read only")
	ErrTypeMismatch      = errors.New("member: type mismatch")
)
