// Package model defines the Model capability shared by everything a
// composite can schedule, and its two leaf variants.
//
// A ScenarioModel replays exogenous data loaded per timestep. A SectorModel
// wraps an externally supplied simulate function together with the
// parameters, interventions and planning that describe one sector.
// Composites live in package sos and satisfy the same interface.
package model
