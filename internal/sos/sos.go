package sos

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/dag"
	"github.com/vk/sosgridgo/internal/inmemorystore"
	"github.com/vk/sosgridgo/internal/metadata"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/resultstore"
)

// Dependency is a directed edge from a source model's output to a sink
// model's input.
type Dependency struct {
	Source string
	Output string
	Sink   string
	Input  string
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", d.Source, d.Output, d.Sink, d.Input)
}

// Port is a declared input of a child model that has no producer.
type Port struct {
	Model string
	Spec  metadata.Spec
}

type portKey struct {
	model string
	input string
}

// SosModel is a composite model. It is built with AddModel and
// AddDependency and is not safe for concurrent mutation; Run may be called
// from one goroutine at a time.
type SosModel struct {
	name   string
	models map[string]model.Model
	order  []string
	deps   []Dependency
	bound  map[portKey]Dependency

	graph *dag.Graph

	convertor         *convert.Convertor
	store             resultstore.Store
	observer          Observer
	maxIterations     int
	rtol, atol        float64
	acceptApproximate bool
}

var _ model.Model = (*SosModel)(nil)

// New creates an empty composite model.
func New(name string, opts ...Option) *SosModel {
	s := &SosModel{
		name:   name,
		models: make(map[string]model.Model),
		bound:  make(map[portKey]Dependency),
	}
	defaults(s)
	for _, opt := range opts {
		opt(s)
	}
	if s.convertor == nil {
		s.convertor = convert.New(nil, nil)
	}
	if s.store == nil {
		s.store = inmemorystore.New()
	}
	return s
}

// Name returns the composite's name.
func (s *SosModel) Name() string { return s.name }

// Store returns the results store the composite records into.
func (s *SosModel) Store() resultstore.Store { return s.store }

// Models returns the child model names in insertion order.
func (s *SosModel) Models() []string { return append([]string(nil), s.order...) }

// Model returns a child by name.
func (s *SosModel) Model(name string) (model.Model, bool) {
	m, ok := s.models[name]
	return m, ok
}

// Dependencies returns the recorded edges in insertion order.
func (s *SosModel) Dependencies() []Dependency { return append([]Dependency(nil), s.deps...) }

// AddModel registers a child. A nested composite must expose unambiguous
// port names.
func (s *SosModel) AddModel(m model.Model) error {
	if m == nil {
		return fmt.Errorf("composite %q: nil model", s.name)
	}
	name := m.Name()
	if name == s.name {
		return fmt.Errorf("%w: %q is the composite's own name", ErrDuplicateName, name)
	}
	if _, ok := s.models[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if nested, ok := m.(*SosModel); ok {
		if err := nested.checkExposed(); err != nil {
			return err
		}
	}
	s.models[name] = m
	s.order = append(s.order, name)
	s.graph = nil
	return nil
}

// AddDependency records an edge from source's output to sink's input. Both
// ports must be declared, their units must agree and the sink input must
// not already be bound.
func (s *SosModel) AddDependency(source, output, sink, input string) error {
	src, ok := s.models[source]
	if !ok {
		return fmt.Errorf("%w: source %q", ErrUnknownModel, source)
	}
	dst, ok := s.models[sink]
	if !ok {
		return fmt.Errorf("%w: sink %q", ErrUnknownModel, sink)
	}
	out, ok := src.Outputs().Get(output)
	if !ok {
		return &UnknownPortError{Model: source, Side: SourceSide, Port: output}
	}
	in, ok := dst.Inputs().Get(input)
	if !ok {
		return &UnknownPortError{Model: sink, Side: SinkSide, Port: input}
	}
	if out.Units != in.Units {
		return fmt.Errorf("%w: %s.%s is %q but %s.%s expects %q",
			convert.ErrInconsistentUnits, source, output, out.Units, sink, input, in.Units)
	}
	key := portKey{sink, input}
	if prev, ok := s.bound[key]; ok {
		return fmt.Errorf("%w: %s.%s is already fed by %s.%s", ErrInputAlreadyBound, sink, input, prev.Source, prev.Output)
	}
	dep := Dependency{Source: source, Output: output, Sink: sink, Input: input}
	s.bound[key] = dep
	s.deps = append(s.deps, dep)
	s.graph = nil
	return nil
}

// FreeInputs returns the declared inputs of all children that have no
// producer, in child insertion order then input declaration order.
func (s *SosModel) FreeInputs() []Port {
	var free []Port
	for _, name := range s.order {
		for _, spec := range s.models[name].Inputs().Specs() {
			if _, ok := s.bound[portKey{name, spec.Name}]; ok {
				continue
			}
			free = append(free, Port{Model: name, Spec: spec})
		}
	}
	return free
}

// Inputs returns the composite's free inputs. Children that share a free
// input name on the same basis are fed from one entry. An ambiguous set is
// reported by CheckDependencies and Run of the enclosing composite.
func (s *SosModel) Inputs() *metadata.Set {
	set, _ := s.exposedInputs()
	return set
}

// Outputs returns the union of the children's outputs.
func (s *SosModel) Outputs() *metadata.Set {
	set, _ := s.exposedOutputs()
	return set
}

// checkExposed fails when the composite cannot be used as a single model
// because two children expose the same port name differently.
func (s *SosModel) checkExposed() error {
	if _, err := s.exposedInputs(); err != nil {
		return err
	}
	_, err := s.exposedOutputs()
	return err
}

// checkNested re-validates nested children, which may have gained models
// since they were added.
func (s *SosModel) checkNested() error {
	for _, name := range s.order {
		if nested, ok := s.models[name].(*SosModel); ok {
			if err := nested.checkExposed(); err != nil {
				return fmt.Errorf("composite %q: %w", s.name, err)
			}
		}
	}
	return nil
}

func (s *SosModel) exposedInputs() (*metadata.Set, error) {
	set := &metadata.Set{}
	for _, p := range s.FreeInputs() {
		if prev, ok := set.Get(p.Spec.Name); ok {
			if prev != p.Spec {
				return set, fmt.Errorf("%w: composite %q exposes input %q as both %s and %s",
					ErrUnsupportedComposition, s.name, p.Spec.Name, prev, p.Spec)
			}
			continue
		}
		if err := set.Add(p.Spec); err != nil {
			return set, err
		}
	}
	return set, nil
}

func (s *SosModel) exposedOutputs() (*metadata.Set, error) {
	set := &metadata.Set{}
	owner := make(map[string]string)
	for _, name := range s.order {
		for _, spec := range s.models[name].Outputs().Specs() {
			if prev, ok := owner[spec.Name]; ok {
				return set, fmt.Errorf("%w: composite %q exposes output %q from both %q and %q",
					ErrUnsupportedComposition, s.name, spec.Name, prev, name)
			}
			owner[spec.Name] = name
			if err := set.Add(spec); err != nil {
				return set, err
			}
		}
	}
	return set, nil
}

// CheckDependencies rebuilds the dependency graph over the direct children
// and validates it. Cycles are allowed unless they pass through a nested
// composite.
func (s *SosModel) CheckDependencies() error {
	if err := s.checkNested(); err != nil {
		return err
	}
	g := dag.New()
	for _, name := range s.order {
		g.AddNode(name)
	}
	for _, d := range s.deps {
		if err := g.AddEdge(d.Source, d.Sink); err != nil {
			return fmt.Errorf("composite %q: %w", s.name, err)
		}
	}
	for _, comp := range g.StronglyConnectedComponents() {
		if len(comp) == 1 && !g.HasSelfLoop(comp[0]) {
			continue
		}
		for _, name := range comp {
			if _, nested := s.models[name].(*SosModel); nested {
				return fmt.Errorf("%w: cycle [%s] passes through nested composite %q",
					ErrUnsupportedComposition, joinNames(comp), name)
			}
		}
	}
	s.graph = g
	return nil
}

// DependencyGraph returns a copy of the validated dependency graph.
func (s *SosModel) DependencyGraph() (*dag.Graph, error) {
	g, err := s.dependencyGraph()
	if err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

func (s *SosModel) dependencyGraph() (*dag.Graph, error) {
	if s.graph == nil {
		if err := s.CheckDependencies(); err != nil {
			return nil, err
		}
		return s.graph, nil
	}
	if err := s.checkNested(); err != nil {
		return nil, err
	}
	return s.graph, nil
}

// ExecutionOrder returns the strongly connected components of the
// dependency graph in the order Run simulates them. Components with more
// than one member, or a single member with a self loop, are solved as
// convergence groups.
func (s *SosModel) ExecutionOrder() ([][]string, error) {
	g, err := s.dependencyGraph()
	if err != nil {
		return nil, err
	}
	return g.TopologicalComponents(), nil
}

func (s *SosModel) isGroup(g *dag.Graph, comp []string) bool {
	return len(comp) > 1 || g.HasSelfLoop(comp[0])
}

func joinNames(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

// flatten merges per-child outputs in child order. Two children producing the
// same output name make the composite's outputs ambiguous.
func (s *SosModel) flatten(results map[string]array.Data) (array.Data, error) {
	out := make(array.Data)
	owner := make(map[string]string)
	for _, child := range s.order {
		for name, arr := range results[child] {
			if prev, ok := owner[name]; ok {
				return nil, fmt.Errorf("%w: composite %q exposes output %q from both %q and %q",
					ErrUnsupportedComposition, s.name, name, prev, child)
			}
			owner[name] = child
			out[name] = arr
		}
	}
	return out, nil
}
