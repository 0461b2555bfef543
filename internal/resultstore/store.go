// Package resultstore defines the interface for recording the outputs a
// composite produces, addressed by timestep and model name.
//
// # Lifecycle
//
// A store is:
//  1. **Created** when a model run starts (or when a composite is built)
//  2. **Appended** once per (timestep, model) as the composite finishes each model
//  3. **Read** by later timesteps (previous-timestep guesses for cycles) and by
//     exporters once the run is over
//
// Recorded values are never overwritten. Re-recording the same
// (timestep, model) pair fails with ErrAlreadyRecorded so that a composite
// cannot silently replace results it already handed to downstream models.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use: exporters and publishers
// may read while the owning composite appends.
package resultstore

import (
	"context"
	"errors"

	"github.com/vk/sosgridgo/internal/array"
)

// ErrAlreadyRecorded is returned when outputs for a (timestep, model) pair
// are recorded twice.
var ErrAlreadyRecorded = errors.New("results already recorded")

// Store records per-timestep model outputs.
type Store interface {
	// SetOutputs records the outputs of model for timestep.
	SetOutputs(ctx context.Context, timestep int, model string, outputs array.Data) error

	// GetOutputs returns the outputs of model for timestep, reporting
	// whether they were recorded.
	GetOutputs(ctx context.Context, timestep int, model string) (array.Data, bool, error)

	// Timestep returns every model's outputs for timestep.
	Timestep(ctx context.Context, timestep int) (map[string]array.Data, error)

	// Timesteps returns the recorded timesteps in ascending order.
	Timesteps(ctx context.Context) ([]int, error)

	// Previous returns the latest recorded timestep strictly before timestep.
	Previous(ctx context.Context, timestep int) (int, bool, error)
}
