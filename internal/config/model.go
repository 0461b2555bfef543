package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of the entire
// application configuration: resolutions, models, composites and runs.
type Model struct {
	// BaseYear anchors every interval set. Zero means the default.
	BaseYear     int
	RegionSets   []*RegionSet
	IntervalSets []*IntervalSet
	Scenarios    []*Scenario
	SectorModels []*SectorModel
	SosModels    []*SosModel
	Narratives   []*Narrative
	ModelRuns    []*ModelRun
}

// --- Resolutions ---

// RegionSet is a named set of polygons.
type RegionSet struct {
	Name    string
	Regions []*Region
}

// Region is a polygon given as a list of [x, y] vertices.
type Region struct {
	Name  string
	Shape [][]float64
}

// IntervalSet is a named set of intervals.
type IntervalSet struct {
	Name      string
	Intervals []*Interval
}

// Interval bounds are ISO-8601 durations from the start of the base year.
type Interval struct {
	Name  string
	Start string
	End   string
}

// --- Models ---

// Port declares an input or output of a model.
type Port struct {
	Name      string
	Regions   string
	Intervals string
	Units     string
}

// Output is a sector model output. When Expression is set the output is
// computed per array cell from the model's inputs and parameters.
type Output struct {
	Port
	Expression hcl.Expression
}

// Scenario is an exogenous data feed.
type Scenario struct {
	Name    string
	Outputs []*Port
	Data    []*ScenarioData
}

// ScenarioData is the value of one scenario output at one timestep, laid
// out as regions x intervals.
type ScenarioData struct {
	Output   string
	Timestep int
	Values   [][]float64
}

// SectorModel is a computational model. Handler names a simulate function
// registered in the registry; it may be empty when every output carries an
// expression.
type SectorModel struct {
	Name          string
	Description   string
	Handler       string
	Inputs        []*Port
	Outputs       []*Output
	Parameters    []*Parameter
	Interventions []*Intervention
}

// Parameter is a tunable sector model value. Min and Max are optional.
type Parameter struct {
	Name        string
	Description string
	Units       string
	Default     float64
	Min         *float64
	Max         *float64
}

// Intervention is a physical asset a sector model can build.
type Intervention struct {
	Name       string
	Location   string
	Capacity   float64
	Attributes map[string]string
}

// --- Composition and runs ---

// SosModel is a composite. Models names scenarios, sector models or other
// composites.
type SosModel struct {
	Name              string
	Models            []string
	Dependencies      []*Dependency
	MaxIterations     int
	RelativeTolerance *float64
	AbsoluteTolerance *float64
	AcceptApproximate bool
}

// Dependency connects a source output to a sink input.
type Dependency struct {
	Source string
	Output string
	Sink   string
	Input  string
}

// Narrative is a named set of parameter overrides.
type Narrative struct {
	Name        string
	Description string
	Overrides   []*Override
}

// Override sets one sector model parameter.
type Override struct {
	Model     string
	Parameter string
	Value     float64
}

// ModelRun binds a composite to timesteps, narratives and a build plan.
type ModelRun struct {
	Name       string
	SosModel   string
	Timesteps  []int
	Narratives []string
	Planning   []*Plan
}

// Plan schedules an intervention to be built at a timestep.
type Plan struct {
	Model        string
	Intervention string
	Timestep     int
}
