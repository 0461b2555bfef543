package sos

import "time"

// Observer receives simulation events from a SosModel. Implementations must
// be safe for concurrent use when composites run in parallel.
type Observer interface {
	// ModelSimulated is called after every child simulation, including each
	// pass of a convergence group.
	ModelSimulated(composite, model string, timestep int, elapsed time.Duration, err error)
	// GroupFinished is called once a convergence group stops iterating.
	GroupFinished(composite string, models []string, timestep int, iterations int, converged bool)
	// TimestepFinished is called when Run completes a timestep.
	TimestepFinished(composite string, timestep int, elapsed time.Duration, err error)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) ModelSimulated(string, string, int, time.Duration, error) {}
func (NopObserver) GroupFinished(string, []string, int, int, bool) {}
func (NopObserver) TimestepFinished(string, int, time.Duration, error) {}
