package builder

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/sos"
)

// Run is a model run ready to execute: a freshly built composite with
// narratives applied and interventions planned.
type Run struct {
	Name       string
	Composite  *sos.SosModel
	Timesteps  []int
	Narratives []string
}

// TimestepFunc is called after each timestep of a run completes.
type TimestepFunc func(ctx context.Context, run string, timestep int, results map[string]array.Data) error

// BuildRun builds the named model run.
func (b *Builder) BuildRun(ctx context.Context, name string) (*Run, error) {
	var cfg *config.ModelRun
	for _, r := range b.cfg.ModelRuns {
		if r.Name == name {
			cfg = r
			break
		}
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: model_run %q", ErrUnknownName, name)
	}

	run, err := b.buildRun(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("model_run %q: %w", name, err)
	}
	return run, nil
}

func (b *Builder) buildRun(ctx context.Context, cfg *config.ModelRun) (*Run, error) {
	timesteps, err := checkTimesteps(cfg.Timesteps)
	if err != nil {
		return nil, err
	}

	conv, err := b.Convertor(ctx)
	if err != nil {
		return nil, err
	}
	st := newBuildState(conv)
	m, err := b.buildModel(ctx, st, cfg.SosModel)
	if err != nil {
		return nil, err
	}
	composite, ok := m.(*sos.SosModel)
	if !ok {
		return nil, fmt.Errorf("%q is not a sos_model", cfg.SosModel)
	}
	if free := composite.FreeInputs(); len(free) > 0 {
		names := make([]string, len(free))
		for i, p := range free {
			names[i] = p.Model + "." + p.Spec.Name
		}
		return nil, fmt.Errorf("inputs without a producer: %s", strings.Join(names, ", "))
	}

	for _, scenarios := range st.scenarios {
		for _, s := range scenarios {
			if err := checkScenarioCoverage(s, timesteps); err != nil {
				return nil, err
			}
		}
	}

	for _, narrativeName := range cfg.Narratives {
		if err := b.applyNarrative(st, narrativeName); err != nil {
			return nil, err
		}
	}

	for _, p := range cfg.Planning {
		instances, ok := st.sectors[p.Model]
		if !ok {
			return nil, fmt.Errorf("%w: planning references sector model %q which is not part of the run", ErrUnknownName, p.Model)
		}
		if !slices.Contains(timesteps, p.Timestep) {
			return nil, fmt.Errorf("planning for %q builds %q at %d, which is not a timestep of the run", p.Model, p.Intervention, p.Timestep)
		}
		for _, sm := range instances {
			if err := sm.Plan(model.Planned{Intervention: p.Intervention, Timestep: p.Timestep}); err != nil {
				return nil, err
			}
		}
	}

	return &Run{
		Name:       cfg.Name,
		Composite:  composite,
		Timesteps:  timesteps,
		Narratives: append([]string(nil), cfg.Narratives...),
	}, nil
}

// checkTimesteps returns a sorted copy of timesteps, rejecting an empty list
// and duplicates.
func checkTimesteps(timesteps []int) ([]int, error) {
	if len(timesteps) == 0 {
		return nil, fmt.Errorf("no timesteps")
	}
	sorted := slices.Clone(timesteps)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("duplicate timestep %d", sorted[i])
		}
	}
	return sorted, nil
}

func checkScenarioCoverage(s *model.ScenarioModel, timesteps []int) error {
	have := s.Timesteps()
	for _, t := range timesteps {
		if !slices.Contains(have, t) {
			return fmt.Errorf("scenario %q has no data for timestep %d", s.Name(), t)
		}
	}
	return nil
}

func (b *Builder) applyNarrative(st *buildState, name string) error {
	var cfg *config.Narrative
	for _, n := range b.cfg.Narratives {
		if n.Name == name {
			cfg = n
			break
		}
	}
	if cfg == nil {
		return fmt.Errorf("%w: narrative %q", ErrUnknownName, name)
	}

	narrative := model.Narrative{Name: cfg.Name, Description: cfg.Description, Overrides: make(map[string]map[string]float64)}
	for _, o := range cfg.Overrides {
		if _, ok := st.sectors[o.Model]; !ok {
			return fmt.Errorf("%w: narrative %q overrides sector model %q which is not part of the run", ErrUnknownName, name, o.Model)
		}
		if narrative.Overrides[o.Model] == nil {
			narrative.Overrides[o.Model] = make(map[string]float64)
		}
		narrative.Overrides[o.Model][o.Parameter] = o.Value
	}

	for _, instances := range st.sectors {
		for _, sm := range instances {
			if err := sm.ApplyNarrative(narrative); err != nil {
				return err
			}
		}
	}
	return nil
}

// Execute simulates every timestep in ascending order. each, when non-nil,
// is called with the results of every completed timestep.
func (r *Run) Execute(ctx context.Context, each TimestepFunc) error {
	logger := ctxlog.FromContext(ctx).With("model_run", r.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("▶️ Starting model run.", "timesteps", r.Timesteps, "narratives", r.Narratives)

	start := time.Now()
	for _, t := range r.Timesteps {
		results, err := r.Composite.Run(ctx, t, nil)
		if err != nil {
			return fmt.Errorf("model run %q, timestep %d: %w", r.Name, t, err)
		}
		logger.Info("Timestep complete.", "timestep", t, "models", len(results))
		if each != nil {
			if err := each(ctx, r.Name, t, results); err != nil {
				return fmt.Errorf("model run %q, timestep %d: %w", r.Name, t, err)
			}
		}
	}
	logger.Info("✅ Model run finished.", "duration", time.Since(start))
	return nil
}
