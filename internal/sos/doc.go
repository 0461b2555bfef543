// Package sos composes models into a system of systems.
//
// A SosModel owns a set of child models and the dependency edges between
// their ports. On each timestep it partitions the dependency graph into
// strongly connected components, simulates acyclic components directly in
// topological order and hands every cyclic component to a ModelSet, which
// iterates the members Gauss-Seidel style until their outputs settle.
//
// Values that cross an edge between ports on different region or interval
// sets are re-expressed through a convert.Convertor before the sink sees
// them. Every timestep's outputs are recorded in a resultstore.Store.
//
// A SosModel is itself a model.Model, so composites can be nested. A nested
// composite is treated as an opaque model: its inputs are its own free
// inputs and its outputs are the union of its children's outputs. Cycles
// in the parent graph may not pass through a nested composite.
package sos
