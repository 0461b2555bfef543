package model

import "fmt"

// Parameter is a named scalar a sector model exposes for tuning.
type Parameter struct {
	Name        string
	Description string
	Units       string
	Default     float64
	// Min and Max bound accepted values when Bounded is set.
	Min     float64
	Max     float64
	Bounded bool
}

// Check reports an error if value lies outside the parameter's bounds.
func (p Parameter) Check(value float64) error {
	if p.Bounded && (value < p.Min || value > p.Max) {
		return fmt.Errorf("parameter %q: value %g outside [%g, %g]", p.Name, value, p.Min, p.Max)
	}
	return nil
}

// Narrative is a named bundle of parameter overrides, keyed by model name
// and then parameter name.
type Narrative struct {
	Name        string
	Description string
	Overrides   map[string]map[string]float64
}
