package resolution

import "errors"

var (
	// ErrUnknownResolution is returned when a region set or interval set
	// name has never been registered.
	ErrUnknownResolution = errors.New("unknown resolution")
	// ErrDuplicateResolution is returned by Register when the name is taken.
	// Use Replace to overwrite a set on purpose.
	ErrDuplicateResolution = errors.New("resolution already registered")
)
