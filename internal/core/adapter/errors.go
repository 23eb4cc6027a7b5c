package adapter

import "errors"

var (
	ErrNoAdapter      = errors.New("adapter: no adapter for type")
	ErrReadOnlyTarget = errors.New("adapter: target is read only")
	ErrNilTarget      = errors.New("adapter: target is nil")
	ErrUnaddressable  = errors.New("adapter: container target is not addressable")
)
