package inmemorystore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/resultstore"
)

// Store is an in-memory implementation of resultstore.Store.
//
// Results are kept in a map of timestep to model to outputs, alongside a
// sorted slice of timesteps so that Previous can answer with a binary
// search. A single RWMutex guards both: writes happen once per model per
// timestep, reads dominate.
type Store struct {
	mu        sync.RWMutex
	results   map[int]map[string]array.Data
	timesteps []int
}

// New creates a new, empty in-memory results store.
func New() *Store {
	return &Store{results: make(map[int]map[string]array.Data)}
}

var _ resultstore.Store = (*Store)(nil)

// SetOutputs records a deep copy of outputs.
func (s *Store) SetOutputs(ctx context.Context, timestep int, model string, outputs array.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byModel, ok := s.results[timestep]
	if !ok {
		byModel = make(map[string]array.Data)
		s.results[timestep] = byModel
		i := sort.SearchInts(s.timesteps, timestep)
		s.timesteps = append(s.timesteps, 0)
		copy(s.timesteps[i+1:], s.timesteps[i:])
		s.timesteps[i] = timestep
	}
	if _, dup := byModel[model]; dup {
		return fmt.Errorf("%w: model %q, timestep %d", resultstore.ErrAlreadyRecorded, model, timestep)
	}
	byModel[model] = outputs.Clone()
	return nil
}

// GetOutputs returns a copy of the recorded outputs.
func (s *Store) GetOutputs(ctx context.Context, timestep int, model string) (array.Data, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out, ok := s.results[timestep][model]
	if !ok {
		return nil, false, nil
	}
	return out.Clone(), true, nil
}

// Timestep returns a copy of every model's outputs for timestep.
func (s *Store) Timestep(ctx context.Context, timestep int) (map[string]array.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byModel := s.results[timestep]
	out := make(map[string]array.Data, len(byModel))
	for name, data := range byModel {
		out[name] = data.Clone()
	}
	return out, nil
}

// Timesteps returns the recorded timesteps, ascending.
func (s *Store) Timesteps(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.timesteps...), nil
}

// Previous returns the latest recorded timestep before timestep.
func (s *Store) Previous(ctx context.Context, timestep int) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.SearchInts(s.timesteps, timestep)
	if i == 0 {
		return 0, false, nil
	}
	return s.timesteps[i-1], true, nil
}
