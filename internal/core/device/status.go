package device

import (
	"errors"
	"fmt"
)

// Status is the result code reported by the device for every call.
type Status int32

const (
	StatusSuccess Status = iota
	StatusNotInitialised
	StatusAlreadyInitialised
	StatusInvalidHandle
	StatusMaxSendersReached
	StatusBadStreamType
	StatusNotFound
	StatusIncorrectSchema
	StatusInvalidParameters
	StatusBufferOverflow
	StatusTimeout
	StatusStreamsChanged
	StatusIncompatibleVersion
	StatusFailedToGetDxDevice
	StatusFailedToCreateDxDevice
	StatusFailedToGetTexture
	StatusQuit
	StatusUnknown
)

var statusNames = map[Status]string{
	StatusSuccess:                "success",
	StatusNotInitialised:         "not initialised",
	StatusAlreadyInitialised:     "already initialised",
	StatusInvalidHandle:          "invalid handle",
	StatusMaxSendersReached:      "max senders reached",
	StatusBadStreamType:          "bad stream type",
	StatusNotFound:               "not found",
	StatusIncorrectSchema:        "incorrect schema",
	StatusInvalidParameters:      "invalid parameters",
	StatusBufferOverflow:         "buffer overflow",
	StatusTimeout:                "timeout",
	StatusStreamsChanged:         "streams changed",
	StatusIncompatibleVersion:    "incompatible version",
	StatusFailedToGetDxDevice:    "failed to get device",
	StatusFailedToCreateDxDevice: "failed to create device",
	StatusFailedToGetTexture:     "failed to get texture",
	StatusQuit:                   "quit",
	StatusUnknown:                "unknown",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

var (
	ErrQuit           = errors.New("device: quit requested")
	ErrStreamsChanged = errors.New("device: streams changed")
	ErrTimeout        = errors.New("device: timeout")
	ErrUnavailable    = errors.New("device: service unavailable")
	ErrNotFound       = errors.New("device: not found")
	ErrInvalidFormat  = errors.New("device: invalid image format")
)

// StatusError carries a non-success status that has no dedicated sentinel.
type StatusError struct {
	Status Status
	Op     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device: %s: %s", e.Op, e.Status)
}

// Err converts a status into an error. Signal statuses map to their
// sentinels so callers can use errors.Is.
func (s Status) Err(op string) error {
	switch s {
	case StatusSuccess:
		return nil
	case StatusQuit:
		return ErrQuit
	case StatusStreamsChanged:
		return ErrStreamsChanged
	case StatusTimeout:
		return ErrTimeout
	case StatusNotInitialised:
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	case StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &StatusError{Status: s, Op: op}
}

// StatusOf is the inverse of Status.Err.
func StatusOf(err error) Status {
	var se *StatusError
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrQuit):
		return StatusQuit
	case errors.Is(err, ErrStreamsChanged):
		return StatusStreamsChanged
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrUnavailable):
		return StatusNotInitialised
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.As(err, &se):
		return se.Status
	}
	return StatusUnknown
}
