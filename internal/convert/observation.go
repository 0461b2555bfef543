package convert

import (
	"errors"
	"fmt"
)

// ErrInconsistentUnits is returned when one conversion batch mixes unit labels,
// or when two values with different units are combined.
var ErrInconsistentUnits = errors.New("inconsistent units")

// Observation is a single value located in space and time.
type Observation struct {
	Region   string
	Interval string
	Value    float64
	Units    string
}

// Add returns the sum of o and other. Both must describe the same region,
// interval and units.
func (o Observation) Add(other Observation) (Observation, error) {
	if o.Units != other.Units {
		return Observation{}, fmt.Errorf("%w: cannot add %q to %q", ErrInconsistentUnits, other.Units, o.Units)
	}
	if o.Region != other.Region || o.Interval != other.Interval {
		return Observation{}, fmt.Errorf("cannot add observation at (%s, %s) to observation at (%s, %s)",
			other.Region, other.Interval, o.Region, o.Interval)
	}
	o.Value += other.Value
	return o, nil
}

func (o Observation) String() string {
	return fmt.Sprintf("%s@%s=%g %s", o.Region, o.Interval, o.Value, o.Units)
}

// Basis names the region set and interval set a batch of observations is
// expressed on.
type Basis struct {
	Regions   string
	Intervals string
}

func (b Basis) String() string {
	return b.Regions + "/" + b.Intervals
}
