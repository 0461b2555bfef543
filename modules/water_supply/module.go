// Package water_supply provides a water supply sector model: treatment
// plants and rainfall both supply water, and each plant has a running cost.
package water_supply

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/registry"
)

// HandlerName is the name sector_model blocks use to select this model.
const HandlerName = "water_supply"

// CostPerPlant is the running cost of one treatment plant.
const CostPerPlant = 1.0

// Module implements the registry.Module interface for this package.
type Module struct{}

// Simulate computes, per cell,
//
//	water = max(plants, raininess)
//	cost  = CostPerPlant * plants
//
// where plants is the existing_plants parameter plus the number of
// interventions built by the timestep.
func Simulate(ctx context.Context, req model.SimulateRequest) (array.Data, error) {
	raininess, ok := req.Inputs["raininess"]
	if !ok {
		return nil, fmt.Errorf("water_supply: missing input raininess")
	}
	plants := req.Parameters["existing_plants"] + float64(len(req.Interventions))

	logger := ctxlog.FromContext(ctx).With("model", req.Model, "timestep", req.Timestep)
	logger.Debug("Simulating water supply.", "plants", plants, "built", len(req.Interventions))

	water := raininess.Clone()
	cost := raininess.Clone()
	for r := range water {
		for i := range water[r] {
			water[r][i] = math.Max(plants, raininess[r][i])
			cost[r][i] = CostPerPlant * plants
		}
	}
	return array.Data{"water": water, "cost": cost}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler(HandlerName, &registry.RegisteredHandler{
		Fn:         Simulate,
		Inputs:     []string{"raininess"},
		Outputs:    []string{"water", "cost"},
		Parameters: []string{"existing_plants"},
	})
}
