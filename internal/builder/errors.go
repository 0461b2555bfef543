package builder

import "errors"

// ErrUnknownName is returned when configuration refers to an undeclared
// model, narrative or model run.
var ErrUnknownName = errors.New("unknown name")
