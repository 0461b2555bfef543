package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Scope is the set of values an output expression may refer to when it is
// evaluated for one array cell.
type Scope struct {
	Timestep int
	Inputs   map[string]float64
	Params   map[string]float64
}

// Converter is the interface for a format-specific expression evaluator. It
// acts as the bridge between raw configuration expressions and the numbers
// a model produces.
type Converter interface {
	// Validate checks that expr only refers to names present in scope,
	// without evaluating it.
	Validate(ctx context.Context, expr hcl.Expression, scope Scope) error

	// EvalNumber evaluates expr against scope and returns the numeric result.
	EvalNumber(ctx context.Context, expr hcl.Expression, scope Scope) (float64, error)
}
