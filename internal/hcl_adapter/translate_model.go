// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"maps"

	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/ctxlog"
)

func translateRegionSet(s *RegionSet) *config.RegionSet {
	out := &config.RegionSet{Name: s.Name}
	for _, r := range s.Regions {
		out.Regions = append(out.Regions, &config.Region{Name: r.Name, Shape: r.Shape})
	}
	return out
}

func translateIntervalSet(s *IntervalSet) *config.IntervalSet {
	out := &config.IntervalSet{Name: s.Name}
	for _, iv := range s.Intervals {
		out.Intervals = append(out.Intervals, &config.Interval{Name: iv.Name, Start: iv.Start, End: iv.End})
	}
	return out
}

func translatePort(p *Port) *config.Port {
	return &config.Port{Name: p.Name, Regions: p.Regions, Intervals: p.Intervals, Units: p.Units}
}

func translateScenario(s *Scenario) *config.Scenario {
	out := &config.Scenario{Name: s.Name}
	for _, p := range s.Outputs {
		out.Outputs = append(out.Outputs, translatePort(p))
	}
	for _, d := range s.Data {
		out.Data = append(out.Data, &config.ScenarioData{Output: d.Output, Timestep: d.Timestep, Values: d.Values})
	}
	return out
}

// translateSectorModel converts the HCL-specific sector model schema into the agnostic model.
func (l *Loader) translateSectorModel(ctx context.Context, s *SectorModel) *config.SectorModel {
	logger := ctxlog.FromContext(ctx).With("sector_model", s.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Debug("Translating HCL sector model to internal config model.")

	out := &config.SectorModel{
		Name:        s.Name,
		Description: s.Description,
		Handler:     s.Handler,
	}
	for _, p := range s.Inputs {
		out.Inputs = append(out.Inputs, translatePort(p))
	}
	for _, o := range s.Outputs {
		translated := &config.Output{Port: config.Port{
			Name: o.Name, Regions: o.Regions, Intervals: o.Intervals, Units: o.Units,
		}}
		translated.Expression = presentExpr(ctx, o.Expression, s.Name+"."+o.Name, "expression")
		out.Outputs = append(out.Outputs, translated)
	}
	for _, p := range s.Parameters {
		out.Parameters = append(out.Parameters, &config.Parameter{
			Name:        p.Name,
			Description: p.Description,
			Units:       p.Units,
			Default:     p.Default,
			Min:         p.Min,
			Max:         p.Max,
		})
	}
	for _, iv := range s.Interventions {
		out.Interventions = append(out.Interventions, &config.Intervention{
			Name:       iv.Name,
			Location:   iv.Location,
			Capacity:   iv.Capacity,
			Attributes: maps.Clone(iv.Attributes),
		})
	}
	return out
}

func translateSosModel(s *SosModel) *config.SosModel {
	out := &config.SosModel{
		Name:              s.Name,
		Models:            s.Models,
		MaxIterations:     s.MaxIterations,
		RelativeTolerance: s.RelativeTolerance,
		AbsoluteTolerance: s.AbsoluteTolerance,
		AcceptApproximate: s.AcceptApproximate,
	}
	for _, d := range s.Dependencies {
		out.Dependencies = append(out.Dependencies, &config.Dependency{
			Source: d.Source, Output: d.Output, Sink: d.Sink, Input: d.Input,
		})
	}
	return out
}

func translateNarrative(n *Narrative) *config.Narrative {
	out := &config.Narrative{Name: n.Name, Description: n.Description}
	for _, o := range n.Overrides {
		out.Overrides = append(out.Overrides, &config.Override{Model: o.Model, Parameter: o.Parameter, Value: o.Value})
	}
	return out
}

func translateModelRun(r *ModelRun) *config.ModelRun {
	out := &config.ModelRun{
		Name:       r.Name,
		SosModel:   r.SosModel,
		Timesteps:  r.Timesteps,
		Narratives: r.Narratives,
	}
	for _, p := range r.Planning {
		out.Planning = append(out.Planning, &config.Plan{Model: p.Model, Intervention: p.Intervention, Timestep: p.Timestep})
	}
	return out
}
