package params

import "errors"

var (
	ErrNoParameterList        = errors.New("params: no parameter list in scene")
	ErrMultipleParameterLists = errors.New("params: more than one parameter list in scene")
	ErrDefaultGroup           = errors.New("params: the default group cannot be removed or moved")
	ErrGroupNotFound          = errors.New("params: group not found")
	ErrNotConfigured          = errors.New("params: parameter target not configured")
	ErrObjectNotFound         = errors.New("params: target object not found")
	ErrInvalidAdapter         = errors.New("params: adapter is not valid")
	ErrDuplicateID            = errors.New("params: duplicate parameter id")
	ErrReservedID             = errors.New("params: parameter id is reserved for internal use")
)
