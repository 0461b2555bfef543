package model

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/metadata"
)

// SimulateRequest is everything a sector model's simulate function sees for
// one timestep.
type SimulateRequest struct {
	Model         string
	Timestep      int
	Inputs        array.Data
	Parameters    map[string]float64
	Interventions []Intervention
}

// SimulateFunc performs the sector computation. It must return a value for
// every declared output.
type SimulateFunc func(ctx context.Context, req SimulateRequest) (array.Data, error)

// SectorModel wraps an externally supplied simulate function with declared
// ports, parameters and interventions.
type SectorModel struct {
	name     string
	simulate SimulateFunc

	mu            sync.RWMutex
	frozen        bool
	inputs        *metadata.Set
	outputs       *metadata.Set
	params        []Parameter
	values        map[string]float64
	interventions []Intervention
	planning      []Planned
}

// NewSectorModel creates a sector model with no ports.
func NewSectorModel(name string, fn SimulateFunc) *SectorModel {
	return &SectorModel{
		name:     name,
		simulate: fn,
		inputs:   &metadata.Set{},
		outputs:  &metadata.Set{},
		values:   make(map[string]float64),
	}
}

// Name returns the model name.
func (m *SectorModel) Name() string { return m.name }

// Inputs returns the declared inputs.
func (m *SectorModel) Inputs() *metadata.Set { return m.inputs }

// Outputs returns the declared outputs.
func (m *SectorModel) Outputs() *metadata.Set { return m.outputs }

// AddInput declares an input.
func (m *SectorModel) AddInput(spec metadata.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return fmt.Errorf("sector model %q: %w", m.name, ErrFrozen)
	}
	return m.inputs.Add(spec)
}

// AddOutput declares an output.
func (m *SectorModel) AddOutput(spec metadata.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frozen {
		return fmt.Errorf("sector model %q: %w", m.name, ErrFrozen)
	}
	return m.outputs.Add(spec)
}

// AddParameter declares a parameter and sets it to its default.
func (m *SectorModel) AddParameter(p Parameter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[p.Name]; ok {
		return fmt.Errorf("sector model %q: duplicate parameter %q", m.name, p.Name)
	}
	if err := p.Check(p.Default); err != nil {
		return fmt.Errorf("sector model %q default: %w", m.name, err)
	}
	m.params = append(m.params, p)
	m.values[p.Name] = p.Default
	return nil
}

// SetParameter overrides the current value of a declared parameter.
func (m *SectorModel) SetParameter(name string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.params {
		if p.Name != name {
			continue
		}
		if err := p.Check(value); err != nil {
			return fmt.Errorf("sector model %q: %w", m.name, err)
		}
		m.values[name] = value
		return nil
	}
	return fmt.Errorf("sector model %q has no parameter %q", m.name, name)
}

// Parameters returns a copy of the current parameter values.
func (m *SectorModel) Parameters() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}

// ApplyNarrative sets every override the narrative holds for this model.
func (m *SectorModel) ApplyNarrative(n Narrative) error {
	overrides := n.Overrides[m.name]
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := m.SetParameter(name, overrides[name]); err != nil {
			errs = append(errs, fmt.Errorf("narrative %q: %w", n.Name, err))
		}
	}
	return errors.Join(errs...)
}

// AddIntervention registers an intervention the model may build.
func (m *SectorModel) AddIntervention(iv Intervention) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.interventions {
		if existing.Name == iv.Name {
			return fmt.Errorf("sector model %q: duplicate intervention %q", m.name, iv.Name)
		}
	}
	m.interventions = append(m.interventions, iv)
	return nil
}

// Interventions returns the registered interventions in registration order.
func (m *SectorModel) Interventions() []Intervention {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Intervention(nil), m.interventions...)
}

// Plan schedules a registered intervention for construction.
func (m *SectorModel) Plan(p Planned) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.interventions {
		if iv.Name == p.Intervention {
			m.planning = append(m.planning, p)
			return nil
		}
	}
	return fmt.Errorf("sector model %q: planning references unknown intervention %q", m.name, p.Intervention)
}

// Built returns the interventions planned at or before timestep, in
// registration order.
func (m *SectorModel) Built(timestep int) []Intervention {
	m.mu.RLock()
	defer m.mu.RUnlock()

	built := make(map[string]bool)
	for _, p := range m.planning {
		if p.Timestep <= timestep {
			built[p.Intervention] = true
		}
	}
	var out []Intervention
	for _, iv := range m.interventions {
		if built[iv.Name] {
			out = append(out, iv)
		}
	}
	return out
}

// Simulate runs the wrapped function for one timestep. The first call
// freezes the model's port metadata.
func (m *SectorModel) Simulate(ctx context.Context, timestep int, data array.Data) (array.Data, error) {
	logger := ctxlog.FromContext(ctx).With("model", m.name, "timestep", timestep)

	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()

	if m.simulate == nil {
		return nil, fmt.Errorf("sector model %q has no simulate function", m.name)
	}
	inputs := make(array.Data, m.inputs.Len())
	for _, name := range m.inputs.Names() {
		v, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("sector model %q: input %q not supplied", m.name, name)
		}
		inputs[name] = v
	}

	req := SimulateRequest{
		Model:         m.name,
		Timestep:      timestep,
		Inputs:        inputs,
		Parameters:    m.Parameters(),
		Interventions: m.Built(timestep),
	}
	logger.Debug("Simulating sector model.", "inputs", len(inputs), "interventions", len(req.Interventions))

	out, err := m.simulate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sector model %q, timestep %d: %w", m.name, timestep, err)
	}
	if err := m.checkOutputs(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *SectorModel) checkOutputs(out array.Data) error {
	for _, name := range m.outputs.Names() {
		v, ok := out[name]
		if !ok {
			return fmt.Errorf("sector model %q: %w: missing output %q", m.name, ErrBadOutput, name)
		}
		if err := v.Validate(-1, -1); err != nil {
			return fmt.Errorf("sector model %q: %w: output %q: %v", m.name, ErrBadOutput, name, err)
		}
	}
	for name := range out {
		if !m.outputs.Has(name) {
			return fmt.Errorf("sector model %q: %w: undeclared output %q", m.name, ErrBadOutput, name)
		}
	}
	return nil
}
