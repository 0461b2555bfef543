// Package dag is a small directed graph over string node ids. It keeps
// insertion order so that every traversal it offers is deterministic, and it
// allows cycles: StronglyConnectedComponents and TopologicalComponents turn
// a cyclic graph into an ordered schedule of groups.
package dag
