package model

// Intervention is a named physical asset a sector model can build.
type Intervention struct {
	Name       string
	Location   string
	Capacity   float64
	Attributes map[string]string
}

// Planned schedules an intervention to be built in a timestep.
type Planned struct {
	Intervention string
	Timestep     int
}
