package sos

import (
	"context"
	"fmt"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Status is the outcome of a convergence group.
type Status int

const (
	Converged Status = iota
	Failed
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is what a ModelSet produced. For a Failed group Outputs holds the
// last iterate.
type Result struct {
	Status     Status
	Outputs    map[string]array.Data
	Iterations int
}

// ModelSet solves a group of mutually dependent children of a composite by
// Gauss-Seidel iteration. Members are simulated in the composite's
// insertion order and each one sees the values produced earlier in the
// same pass. It is created for one timestep and then discarded.
type ModelSet struct {
	owner  *SosModel
	models []string
}

func newModelSet(owner *SosModel, models []string) *ModelSet {
	return &ModelSet{owner: owner, models: models}
}

// Models returns the member names in simulation order.
func (m *ModelSet) Models() []string { return append([]string(nil), m.models...) }

// Run iterates the group for timestep. upstream holds the outputs of
// models outside the group that were already simulated. An error is only
// returned when a member fails to simulate or its inputs cannot be built;
// running out of iterations is reported through Result.Status.
func (m *ModelSet) Run(ctx context.Context, timestep int, upstream map[string]array.Data, external array.Data) (Result, error) {
	ctx, span := tracer.Start(ctx, "sos.ModelSet.Run", trace.WithAttributes(
		attribute.StringSlice("sos.models", m.models),
		attribute.Int("sos.timestep", timestep),
	))
	defer span.End()

	s := m.owner
	logger := ctxlog.FromContext(ctx).With("group", m.models)
	logger.Debug("Solving convergence group.", "max_iterations", s.maxIterations)

	available := make(map[string]array.Data, len(upstream)+len(m.models))
	for name, data := range upstream {
		available[name] = data
	}
	guesses, err := m.initialGuesses(ctx, timestep)
	if err != nil {
		return Result{}, err
	}
	for name, data := range guesses {
		available[name] = data
	}

	var previous map[string]array.Data
	for iteration := 1; iteration <= s.maxIterations; iteration++ {
		current := make(map[string]array.Data, len(m.models))
		for _, name := range m.models {
			inputs, err := s.gatherInputs(ctx, name, available, external)
			if err != nil {
				return Result{}, err
			}
			out, err := s.simulateChild(ctx, name, timestep, inputs)
			if err != nil {
				return Result{}, err
			}
			available[name] = out
			current[name] = out
		}

		if previous != nil && m.settled(previous, current) {
			logger.Debug("✅ Convergence group settled.", "iterations", iteration)
			span.SetAttributes(attribute.Int("sos.iterations", iteration), attribute.Bool("sos.converged", true))
			s.observer.GroupFinished(s.name, m.models, timestep, iteration, true)
			return Result{Status: Converged, Outputs: current, Iterations: iteration}, nil
		}
		previous = current
	}

	span.SetAttributes(attribute.Int("sos.iterations", s.maxIterations), attribute.Bool("sos.converged", false))
	s.observer.GroupFinished(s.name, m.models, timestep, s.maxIterations, false)
	return Result{Status: Failed, Outputs: previous, Iterations: s.maxIterations}, nil
}

func (m *ModelSet) settled(previous, current map[string]array.Data) bool {
	for _, name := range m.models {
		if !current[name].AllClose(previous[name], m.owner.rtol, m.owner.atol) {
			return false
		}
	}
	return true
}

// initialGuesses seeds every member's outputs with its outputs from the
// latest earlier timestep, or zeros on the output's resolution when there
// is none.
func (m *ModelSet) initialGuesses(ctx context.Context, timestep int) (map[string]array.Data, error) {
	s := m.owner
	prev, hasPrev, err := s.store.Previous(ctx, timestep)
	if err != nil {
		return nil, err
	}

	guesses := make(map[string]array.Data, len(m.models))
	for _, name := range m.models {
		var recorded array.Data
		if hasPrev {
			if recorded, _, err = s.store.GetOutputs(ctx, prev, name); err != nil {
				return nil, err
			}
		}

		guess := make(array.Data)
		for _, spec := range s.models[name].Outputs().Specs() {
			if value, ok := recorded[spec.Name]; ok {
				guess[spec.Name] = value
				continue
			}
			regions, intervals, err := s.convertor.Shape(convert.Basis{
				Regions:   spec.SpatialResolution,
				Intervals: spec.TemporalResolution,
			})
			if err != nil {
				return nil, fmt.Errorf("initial guess for %s.%s: %w", name, spec.Name, err)
			}
			guess[spec.Name] = array.Zeros(regions, intervals)
		}
		guesses[name] = guess
	}
	return guesses, nil
}
