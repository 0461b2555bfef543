package sos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/sosgridgo/internal/array"
)

var (
	// ErrDuplicateName is returned when a child model name is already taken.
	ErrDuplicateName = errors.New("duplicate model name")
	// ErrUnknownModel is returned when a dependency names a model that is not a child.
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnknownPort is wrapped by UnknownPortError.
	ErrUnknownPort = errors.New("unknown port")
	// ErrInputAlreadyBound is returned when a sink input already has a producer.
	ErrInputAlreadyBound = errors.New("input already bound")
	// ErrMissingDependency is wrapped by MissingDependencyError.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrConvergenceFailure is wrapped by ConvergenceError.
	ErrConvergenceFailure = errors.New("convergence failure")
	// ErrUnsupportedComposition is returned for nested composites that would
	// need to be flattened into the parent graph.
	ErrUnsupportedComposition = errors.New("unsupported composition")
)

// Side names which end of a dependency an error refers to.
type Side string

const (
	SourceSide Side = "source output"
	SinkSide   Side = "sink input"
)

// UnknownPortError reports a dependency endpoint that the model does not declare.
type UnknownPortError struct {
	Model string
	Side  Side
	Port  string
}

func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("model %q has no %s %q", e.Model, e.Side, e.Port)
}

func (e *UnknownPortError) Unwrap() error { return ErrUnknownPort }

// MissingDependencyError reports a declared input that has neither an
// internal producer nor external data.
type MissingDependencyError struct {
	Model string
	Input string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("input %q of model %q has no producer and no external data", e.Input, e.Model)
}

func (e *MissingDependencyError) Unwrap() error { return ErrMissingDependency }

// ConvergenceError reports a convergence group that did not settle within
// its iteration budget. LastIterate holds the outputs of the final pass.
type ConvergenceError struct {
	Models      []string
	Timestep    int
	Iterations  int
	LastIterate map[string]array.Data
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("models [%s] did not converge at timestep %d after %d iterations",
		strings.Join(e.Models, ", "), e.Timestep, e.Iterations)
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergenceFailure }
