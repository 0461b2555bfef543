package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// --- Resolutions ---

// Settings holds file-wide options.
type Settings struct {
	BaseYear int `hcl:"base_year,optional"`
}

// RegionSet represents a `region_set` block.
type RegionSet struct {
	Name    string    `hcl:"name,label"`
	Regions []*Region `hcl:"region,block"`
}

// Region represents a `region` block; shape is a list of [x, y] vertices.
type Region struct {
	Name  string      `hcl:"name,label"`
	Shape [][]float64 `hcl:"shape"`
}

// IntervalSet represents an `interval_set` block.
type IntervalSet struct {
	Name      string      `hcl:"name,label"`
	Intervals []*Interval `hcl:"interval,block"`
}

// Interval represents an `interval` block.
type Interval struct {
	Name  string `hcl:"name,label"`
	Start string `hcl:"start"`
	End   string `hcl:"end"`
}

// --- Models ---

// Port represents an `input` block, or a scenario `output` block.
type Port struct {
	Name      string `hcl:"name,label"`
	Regions   string `hcl:"regions"`
	Intervals string `hcl:"intervals"`
	Units     string `hcl:"units"`
}

// Output represents a sector model `output` block.
type Output struct {
	Name       string         `hcl:"name,label"`
	Regions    string         `hcl:"regions"`
	Intervals  string         `hcl:"intervals"`
	Units      string         `hcl:"units"`
	Expression hcl.Expression `hcl:"expression,optional"`
}

// ScenarioData represents a scenario `data` block.
type ScenarioData struct {
	Output   string      `hcl:"output,label"`
	Timestep int         `hcl:"timestep"`
	Values   [][]float64 `hcl:"values"`
}

// Scenario represents a `scenario` block.
type Scenario struct {
	Name    string          `hcl:"name,label"`
	Outputs []*Port         `hcl:"output,block"`
	Data    []*ScenarioData `hcl:"data,block"`
}

// Parameter represents a sector model `parameter` block.
type Parameter struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Units       string   `hcl:"units,optional"`
	Default     float64  `hcl:"default"`
	Min         *float64 `hcl:"min,optional"`
	Max         *float64 `hcl:"max,optional"`
}

// Intervention represents a sector model `intervention` block.
type Intervention struct {
	Name       string            `hcl:"name,label"`
	Location   string            `hcl:"location,optional"`
	Capacity   float64           `hcl:"capacity,optional"`
	Attributes map[string]string `hcl:"attributes,optional"`
}

// SectorModel represents a `sector_model` block.
type SectorModel struct {
	Name          string          `hcl:"name,label"`
	Description   string          `hcl:"description,optional"`
	Handler       string          `hcl:"handler,optional"`
	Inputs        []*Port         `hcl:"input,block"`
	Outputs       []*Output       `hcl:"output,block"`
	Parameters    []*Parameter    `hcl:"parameter,block"`
	Interventions []*Intervention `hcl:"intervention,block"`
}

// --- Composition and runs ---

// Dependency represents a `dependency` block.
type Dependency struct {
	Source string `hcl:"source"`
	Output string `hcl:"output"`
	Sink   string `hcl:"sink"`
	Input  string `hcl:"input"`
}

// SosModel represents a `sos_model` block.
type SosModel struct {
	Name              string        `hcl:"name,label"`
	Models            []string      `hcl:"models"`
	Dependencies      []*Dependency `hcl:"dependency,block"`
	MaxIterations     int           `hcl:"max_iterations,optional"`
	RelativeTolerance *float64      `hcl:"relative_tolerance,optional"`
	AbsoluteTolerance *float64      `hcl:"absolute_tolerance,optional"`
	AcceptApproximate bool          `hcl:"accept_approximate,optional"`
}

// Override represents a narrative `override` block.
type Override struct {
	Model     string  `hcl:"model"`
	Parameter string  `hcl:"parameter"`
	Value     float64 `hcl:"value"`
}

// Narrative represents a `narrative` block.
type Narrative struct {
	Name        string      `hcl:"name,label"`
	Description string      `hcl:"description,optional"`
	Overrides   []*Override `hcl:"override,block"`
}

// Plan represents a model run `plan` block.
type Plan struct {
	Model        string `hcl:"model"`
	Intervention string `hcl:"intervention"`
	Timestep     int    `hcl:"timestep"`
}

// ModelRun represents a `model_run` block.
type ModelRun struct {
	Name       string   `hcl:"name,label"`
	SosModel   string   `hcl:"sos_model"`
	Timesteps  []int    `hcl:"timesteps"`
	Narratives []string `hcl:"narratives,optional"`
	Planning   []*Plan  `hcl:"plan,block"`
}
