package sos

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/vk/sosgridgo/internal/sos")

// Run simulates every child for timestep and records the outputs in the
// results store. external supplies values for free inputs, keyed by input
// name, already on the consuming model's resolution. The result maps each
// child name to its outputs.
func (s *SosModel) Run(ctx context.Context, timestep int, external array.Data) (results map[string]array.Data, err error) {
	ctx, span := tracer.Start(ctx, "sos.Run", trace.WithAttributes(
		attribute.String("sos.composite", s.name),
		attribute.Int("sos.timestep", timestep),
	))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.observer.TimestepFinished(s.name, timestep, time.Since(start), err)
	}()

	logger := ctxlog.FromContext(ctx).With("composite", s.name, "timestep", timestep)
	ctx = ctxlog.WithLogger(ctx, logger)

	g, err := s.dependencyGraph()
	if err != nil {
		return nil, err
	}
	order := g.TopologicalComponents()
	logger.Debug("Execution order resolved.", "components", len(order))

	results = make(map[string]array.Data, len(s.order))
	for _, comp := range order {
		if !s.isGroup(g, comp) {
			name := comp[0]
			inputs, err := s.gatherInputs(ctx, name, results, external)
			if err != nil {
				return nil, err
			}
			out, err := s.simulateChild(ctx, name, timestep, inputs)
			if err != nil {
				return nil, err
			}
			results[name] = out
			continue
		}

		res, err := newModelSet(s, comp).Run(ctx, timestep, results, external)
		if err != nil {
			return nil, err
		}
		if res.Status == Failed {
			if !s.acceptApproximate {
				return nil, &ConvergenceError{
					Models:      comp,
					Timestep:    timestep,
					Iterations:  res.Iterations,
					LastIterate: res.Outputs,
				}
			}
			logger.Warn("⚠️ Accepting approximate result of non-converged models.", "models", comp, "iterations", res.Iterations)
		}
		for name, out := range res.Outputs {
			results[name] = out
		}
	}

	for _, name := range s.order {
		if err := s.store.SetOutputs(ctx, timestep, name, results[name]); err != nil {
			return nil, fmt.Errorf("composite %q: recording %q: %w", s.name, name, err)
		}
	}
	return results, nil
}

// Simulate runs the composite as a single model and returns the union of
// its children's outputs.
func (s *SosModel) Simulate(ctx context.Context, timestep int, data array.Data) (array.Data, error) {
	results, err := s.Run(ctx, timestep, data)
	if err != nil {
		return nil, err
	}
	return s.flatten(results)
}

// gatherInputs assembles the inputs of a child from the outputs available so
// far, falling back to external data for unbound inputs.
func (s *SosModel) gatherInputs(ctx context.Context, name string, available map[string]array.Data, external array.Data) (array.Data, error) {
	specs := s.models[name].Inputs().Specs()
	inputs := make(array.Data, len(specs))
	for _, in := range specs {
		dep, bound := s.bound[portKey{name, in.Name}]
		if !bound {
			value, ok := external[in.Name]
			if !ok {
				return nil, &MissingDependencyError{Model: name, Input: in.Name}
			}
			inputs[in.Name] = value
			continue
		}

		produced, ok := available[dep.Source][dep.Output]
		if !ok {
			return nil, fmt.Errorf("%w: %s has not been produced before %q runs", ErrMissingDependency, dep, name)
		}
		out, _ := s.models[dep.Source].Outputs().Get(dep.Output)
		from := convert.Basis{Regions: out.SpatialResolution, Intervals: out.TemporalResolution}
		if out.SameBasis(in) {
			regions, intervals, err := s.convertor.Shape(from)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", dep, err)
			}
			if err := produced.Validate(regions, intervals); err != nil {
				return nil, fmt.Errorf("%w: %s on %s: %v", model.ErrBadOutput, dep, from, err)
			}
			inputs[in.Name] = produced
			continue
		}
		converted, err := s.convertor.ConvertArray(ctx, produced, out.Units, from,
			convert.Basis{Regions: in.SpatialResolution, Intervals: in.TemporalResolution})
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", dep, err)
		}
		inputs[in.Name] = converted
	}
	return inputs, nil
}

func (s *SosModel) simulateChild(ctx context.Context, name string, timestep int, inputs array.Data) (out array.Data, err error) {
	ctx, span := tracer.Start(ctx, "sos.simulate", trace.WithAttributes(
		attribute.String("sos.model", name),
		attribute.Int("sos.timestep", timestep),
	))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.observer.ModelSimulated(s.name, name, timestep, time.Since(start), err)
	}()

	logger := ctxlog.FromContext(ctx).With("model", name)
	logger.Debug("▶️ Simulating model.")

	out, err = s.models[name].Simulate(ctx, timestep, inputs)
	if err != nil {
		return nil, fmt.Errorf("model %q at timestep %d: %w", name, timestep, err)
	}
	logger.Debug("✅ Model simulated.")
	return out, nil
}
