package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	n := &node{
		id:         id,
		index:      len(g.order),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[id] = n
	g.order = append(g.order, n)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. Self loops are
// allowed. An error is returned if either node does not exist.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, len(g.order))
	for i, n := range g.order {
		ids[i] = n.id
	}
	return ids
}

// Edges returns every edge ordered by source then target insertion order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var edges []Edge
	for _, n := range g.order {
		for _, dep := range sortedNodes(n.dependents) {
			edges = append(edges, Edge{From: n.id, To: dep.id})
		}
	}
	return edges
}

// HasSelfLoop reports whether id depends on itself.
func (g *Graph) HasSelfLoop(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	_, loop := n.deps[id]
	return loop
}

// Clone returns an independent copy of the graph.
func (g *Graph) Clone() *Graph {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := New()
	for _, n := range g.order {
		out.AddNode(n.id)
	}
	for _, n := range g.order {
		for depID := range n.dependents {
			_ = out.AddEdge(n.id, depID)
		}
	}
	return out
}

func sortedNodes(set map[string]*node) []*node {
	out := make([]*node, 0, len(set))
	for _, n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

func ids(nodes []*node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}
