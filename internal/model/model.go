package model

import (
	"context"
	"errors"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/metadata"
)

var (
	// ErrFrozen is returned when port metadata is changed after the model has
	// started simulating.
	ErrFrozen = errors.New("model metadata is frozen once simulation has started")
	// ErrNoData is returned by a ScenarioModel asked for a timestep it has no data for.
	ErrNoData = errors.New("no data for timestep")
	// ErrBadOutput is returned when a simulate function produces outputs that
	// do not match the declared ones.
	ErrBadOutput = errors.New("simulate produced invalid outputs")
)

// Model is a named unit with declared inputs and outputs that can be
// simulated one timestep at a time.
type Model interface {
	Name() string
	Inputs() *metadata.Set
	Outputs() *metadata.Set
	Simulate(ctx context.Context, timestep int, data array.Data) (array.Data, error)
}
