package builder

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/inmemorystore"
	"github.com/vk/sosgridgo/internal/metadata"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/sos"
)

// buildState collects the model instances created for one composite tree.
type buildState struct {
	conv      *convert.Convertor
	sectors   map[string][]*model.SectorModel
	scenarios map[string][]*model.ScenarioModel
	visiting  map[string]bool
}

func newBuildState(conv *convert.Convertor) *buildState {
	return &buildState{
		conv:      conv,
		sectors:   make(map[string][]*model.SectorModel),
		scenarios: make(map[string][]*model.ScenarioModel),
		visiting:  make(map[string]bool),
	}
}

// buildModel creates a fresh instance of the named scenario, sector model or
// composite.
func (b *Builder) buildModel(ctx context.Context, st *buildState, name string) (model.Model, error) {
	for _, s := range b.cfg.Scenarios {
		if s.Name == name {
			m, err := b.buildScenario(st, s)
			if err != nil {
				return nil, fmt.Errorf("scenario %q: %w", name, err)
			}
			st.scenarios[name] = append(st.scenarios[name], m)
			return m, nil
		}
	}
	for _, s := range b.cfg.SectorModels {
		if s.Name == name {
			m, err := b.buildSector(ctx, st, s)
			if err != nil {
				return nil, fmt.Errorf("sector_model %q: %w", name, err)
			}
			st.sectors[name] = append(st.sectors[name], m)
			return m, nil
		}
	}
	for _, s := range b.cfg.SosModels {
		if s.Name == name {
			if st.visiting[name] {
				return nil, fmt.Errorf("sos_model %q contains itself", name)
			}
			st.visiting[name] = true
			defer delete(st.visiting, name)

			m, err := b.buildSos(ctx, st, s)
			if err != nil {
				return nil, fmt.Errorf("sos_model %q: %w", name, err)
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: model %q", ErrUnknownName, name)
}

func spec(p config.Port) metadata.Spec {
	return metadata.Spec{Name: p.Name, SpatialResolution: p.Regions, TemporalResolution: p.Intervals, Units: p.Units}
}

// checkPort verifies that the port's resolutions are registered.
func checkPort(conv *convert.Convertor, p config.Port) error {
	if _, _, err := conv.Shape(convert.Basis{Regions: p.Regions, Intervals: p.Intervals}); err != nil {
		return fmt.Errorf("port %q: %w", p.Name, err)
	}
	return nil
}

func (b *Builder) buildScenario(st *buildState, s *config.Scenario) (*model.ScenarioModel, error) {
	specs := make([]metadata.Spec, 0, len(s.Outputs))
	for _, out := range s.Outputs {
		if err := checkPort(st.conv, *out); err != nil {
			return nil, err
		}
		specs = append(specs, spec(*out))
	}
	m, err := model.NewScenarioModel(s.Name, specs...)
	if err != nil {
		return nil, err
	}

	for _, d := range s.Data {
		out, ok := m.Outputs().Get(d.Output)
		if !ok {
			return nil, fmt.Errorf("data for undeclared output %q", d.Output)
		}
		regions, intervals, _ := st.conv.Shape(convert.Basis{Regions: out.SpatialResolution, Intervals: out.TemporalResolution})
		value := array.Array(d.Values)
		if err := value.Validate(regions, intervals); err != nil {
			return nil, fmt.Errorf("data for %q at %d: %w", d.Output, d.Timestep, err)
		}
		if err := m.AddData(d.Timestep, d.Output, value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (b *Builder) buildSector(ctx context.Context, st *buildState, s *config.SectorModel) (*model.SectorModel, error) {
	var base model.SimulateFunc
	var produced map[string]bool
	if s.Handler != "" {
		h, ok := b.reg.Handler(s.Handler)
		if !ok {
			return nil, fmt.Errorf("handler %q is not registered", s.Handler)
		}
		base = h.Fn
		produced = make(map[string]bool, len(h.Outputs))
		for _, out := range h.Outputs {
			produced[out] = true
		}
	}

	scope := config.Scope{Inputs: map[string]float64{}, Params: map[string]float64{}}
	for _, in := range s.Inputs {
		scope.Inputs[in.Name] = 0
	}
	for _, p := range s.Parameters {
		scope.Params[p.Name] = 0
	}

	var exprs []exprOutput
	for _, out := range s.Outputs {
		if out.Expression == nil {
			if !produced[out.Name] {
				return nil, fmt.Errorf("output %q is produced neither by a handler nor by an expression", out.Name)
			}
			continue
		}
		if b.converter == nil {
			return nil, fmt.Errorf("output %q has an expression but no expression evaluator is configured", out.Name)
		}
		if err := b.converter.Validate(ctx, out.Expression, scope); err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		regions, intervals, err := st.conv.Shape(convert.Basis{Regions: out.Regions, Intervals: out.Intervals})
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		exprs = append(exprs, exprOutput{name: out.Name, expr: out.Expression, regions: regions, intervals: intervals})
	}

	fn := base
	if len(exprs) > 0 {
		fn = expressionFunc(b.converter, base, exprs)
	}
	m := model.NewSectorModel(s.Name, fn)

	for _, in := range s.Inputs {
		if err := checkPort(st.conv, *in); err != nil {
			return nil, err
		}
		if err := m.AddInput(spec(*in)); err != nil {
			return nil, err
		}
	}
	for _, out := range s.Outputs {
		if err := checkPort(st.conv, out.Port); err != nil {
			return nil, err
		}
		if err := m.AddOutput(spec(out.Port)); err != nil {
			return nil, err
		}
	}
	for _, p := range s.Parameters {
		param := model.Parameter{Name: p.Name, Description: p.Description, Units: p.Units, Default: p.Default}
		if p.Min != nil || p.Max != nil {
			param.Bounded = true
			param.Min, param.Max = math.Inf(-1), math.Inf(1)
			if p.Min != nil {
				param.Min = *p.Min
			}
			if p.Max != nil {
				param.Max = *p.Max
			}
		}
		if err := m.AddParameter(param); err != nil {
			return nil, err
		}
	}
	for _, iv := range s.Interventions {
		if err := m.AddIntervention(model.Intervention{
			Name:       iv.Name,
			Location:   iv.Location,
			Capacity:   iv.Capacity,
			Attributes: iv.Attributes,
		}); err != nil {
			return nil, err
		}
	}

	ctxlog.FromContext(ctx).Debug("Built sector model.", "sector_model", s.Name, "handler", s.Handler, "expressions", len(exprs))
	return m, nil
}

func (b *Builder) buildSos(ctx context.Context, st *buildState, s *config.SosModel) (*sos.SosModel, error) {
	opts := []sos.Option{
		sos.WithConvertor(st.conv),
		sos.WithStore(inmemorystore.New()),
		sos.WithMaxIterations(s.MaxIterations),
	}
	if s.RelativeTolerance != nil || s.AbsoluteTolerance != nil {
		rtol, atol := array.DefaultRelativeTolerance, array.DefaultAbsoluteTolerance
		if s.RelativeTolerance != nil {
			rtol = *s.RelativeTolerance
		}
		if s.AbsoluteTolerance != nil {
			atol = *s.AbsoluteTolerance
		}
		opts = append(opts, sos.WithTolerance(rtol, atol))
	}
	if b.observer != nil {
		opts = append(opts, sos.WithObserver(b.observer))
	}
	if s.AcceptApproximate {
		opts = append(opts, sos.WithAcceptApproximate())
	}

	composite := sos.New(s.Name, opts...)
	for _, child := range s.Models {
		m, err := b.buildModel(ctx, st, child)
		if err != nil {
			return nil, err
		}
		if err := composite.AddModel(m); err != nil {
			return nil, err
		}
	}
	for _, d := range s.Dependencies {
		if err := composite.AddDependency(d.Source, d.Output, d.Sink, d.Input); err != nil {
			return nil, fmt.Errorf("dependency %s.%s -> %s.%s: %w", d.Source, d.Output, d.Sink, d.Input, err)
		}
	}
	if err := composite.CheckDependencies(); err != nil {
		return nil, err
	}
	return composite, nil
}
