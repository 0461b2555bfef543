package model

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/metadata"
)

// ScenarioModel is a Model without inputs that replays pre-loaded data.
type ScenarioModel struct {
	name    string
	outputs *metadata.Set

	mu   sync.RWMutex
	data map[int]array.Data
}

// NewScenarioModel creates a scenario declaring the given outputs.
func NewScenarioModel(name string, outputs ...metadata.Spec) (*ScenarioModel, error) {
	set, err := metadata.NewSet(outputs...)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", name, err)
	}
	return &ScenarioModel{name: name, outputs: set, data: make(map[int]array.Data)}, nil
}

// Name returns the scenario name.
func (m *ScenarioModel) Name() string { return m.name }

// Inputs is always empty for a scenario.
func (m *ScenarioModel) Inputs() *metadata.Set { return &metadata.Set{} }

// Outputs returns the declared outputs.
func (m *ScenarioModel) Outputs() *metadata.Set { return m.outputs }

// AddData stores the value of output for timestep, replacing any previous value.
func (m *ScenarioModel) AddData(timestep int, output string, value array.Array) error {
	if !m.outputs.Has(output) {
		return fmt.Errorf("scenario %q has no output %q", m.name, output)
	}
	if err := value.Validate(-1, -1); err != nil {
		return fmt.Errorf("scenario %q, output %q, timestep %d: %w", m.name, output, timestep, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[timestep] == nil {
		m.data[timestep] = make(array.Data)
	}
	m.data[timestep][output] = value.Clone()
	return nil
}

// Timesteps returns the timesteps that carry data, ascending.
func (m *ScenarioModel) Timesteps() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]int, 0, len(m.data))
	for t := range m.data {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// Simulate returns every declared output for timestep. The data argument is ignored.
func (m *ScenarioModel) Simulate(ctx context.Context, timestep int, _ array.Data) (array.Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := m.data[timestep]
	out := make(array.Data, m.outputs.Len())
	for _, name := range m.outputs.Names() {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("scenario %q, output %q: %w %d", m.name, name, ErrNoData, timestep)
		}
		out[name] = v.Clone()
	}
	ctxlog.FromContext(ctx).Debug("Scenario data served.", "scenario", m.name, "timestep", timestep, "outputs", len(out))
	return out, nil
}
