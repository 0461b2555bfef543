// Package energy_demand provides two sector models that depend on each
// other: electricity demand is driven by fluffiness, and fluffiness is
// driven by electricity demand. Composed together they form a cycle with
// a single fixed point.
package energy_demand

import (
	"context"
	"fmt"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/registry"
)

const (
	DemandHandler     = "energy_demand"
	FluffinessHandler = "fluffiness"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// SimulateDemand computes electricity_demand = y^3 - 6y^2 + 0.9y + 0.15 per
// cell, where y is fluffiness.
func SimulateDemand(_ context.Context, req model.SimulateRequest) (array.Data, error) {
	y, ok := req.Inputs["fluffiness"]
	if !ok {
		return nil, fmt.Errorf("energy_demand: missing input fluffiness")
	}
	return array.Data{"electricity_demand": mapCells(y, func(v float64) float64 {
		return v*v*v - 6*v*v + 0.9*v + 0.15
	})}, nil
}

// SimulateFluffiness computes fluffiness = coefficient * electricity_demand.
func SimulateFluffiness(_ context.Context, req model.SimulateRequest) (array.Data, error) {
	demand, ok := req.Inputs["electricity_demand"]
	if !ok {
		return nil, fmt.Errorf("fluffiness: missing input electricity_demand")
	}
	k := req.Parameters["coefficient"]
	return array.Data{"fluffiness": mapCells(demand, func(v float64) float64 { return k * v })}, nil
}

func mapCells(a array.Array, fn func(float64) float64) array.Array {
	out := a.Clone()
	for r := range out {
		for i := range out[r] {
			out[r][i] = fn(out[r][i])
		}
	}
	return out
}

// Register registers both handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler(DemandHandler, &registry.RegisteredHandler{
		Fn:      SimulateDemand,
		Inputs:  []string{"fluffiness"},
		Outputs: []string{"electricity_demand"},
	})
	r.RegisterHandler(FluffinessHandler, &registry.RegisteredHandler{
		Fn:         SimulateFluffiness,
		Inputs:     []string{"electricity_demand"},
		Outputs:    []string{"fluffiness"},
		Parameters: []string{"coefficient"},
	})
}
