package dag

import "sort"

// StronglyConnectedComponents partitions the graph with Tarjan's algorithm.
// Members of each component are listed in insertion order. Components come
// out in reverse topological order, consumers before their producers; use
// TopologicalComponents for an execution schedule.
func (g *Graph) StronglyConnectedComponents() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	comps := g.tarjan()
	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = ids(c)
	}
	return out
}

func (g *Graph) tarjan() [][]*node {
	var (
		counter int
		stack   []*node
		onStack = make(map[*node]bool)
		index   = make(map[*node]int)
		low     = make(map[*node]int)
		comps   [][]*node
	)

	var strongConnect func(v *node)
	strongConnect = func(v *node) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range sortedNodes(v.dependents) {
			if _, seen := index[w]; !seen {
				strongConnect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []*node
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Slice(comp, func(i, j int) bool { return comp[i].index < comp[j].index })
			comps = append(comps, comp)
		}
	}

	for _, n := range g.order {
		if _, seen := index[n]; !seen {
			strongConnect(n)
		}
	}
	return comps
}

// TopologicalComponents returns the strongly connected components ordered so
// that every component comes after all components it depends on. Among
// components that are ready at the same time, the one whose earliest member
// was inserted first is scheduled first, so the result is deterministic.
func (g *Graph) TopologicalComponents() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	comps := g.tarjan()
	owner := make(map[*node]int, len(g.order))
	for ci, c := range comps {
		for _, n := range c {
			owner[n] = ci
		}
	}

	indegree := make([]int, len(comps))
	succ := make([]map[int]struct{}, len(comps))
	for ci := range comps {
		succ[ci] = make(map[int]struct{})
	}
	for ci, c := range comps {
		for _, n := range c {
			for _, dep := range n.dependents {
				cj := owner[dep]
				if cj == ci {
					continue
				}
				if _, ok := succ[ci][cj]; !ok {
					succ[ci][cj] = struct{}{}
					indegree[cj]++
				}
			}
		}
	}

	// Members are sorted, so the first member carries the component's rank.
	rank := func(ci int) int { return comps[ci][0].index }

	var ready []int
	for ci := range comps {
		if indegree[ci] == 0 {
			ready = append(ready, ci)
		}
	}

	out := make([][]string, 0, len(comps))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if rank(ready[i]) < rank(ready[best]) {
				best = i
			}
		}
		ci := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		out = append(out, ids(comps[ci]))

		for cj := range succ[ci] {
			indegree[cj]--
			if indegree[cj] == 0 {
				ready = append(ready, cj)
			}
		}
	}
	return out
}
