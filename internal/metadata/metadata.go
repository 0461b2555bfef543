// Package metadata describes the ports a model declares: a name plus the
// spatial resolution, temporal resolution and units its values are expressed in.
package metadata

import (
	"errors"
	"fmt"
)

// ErrDuplicatePort is returned when a Set already holds a port of the same name.
var ErrDuplicatePort = errors.New("duplicate port")

// Spec is the metadata of a single model input or output.
type Spec struct {
	Name               string
	SpatialResolution  string
	TemporalResolution string
	Units              string
}

// SameBasis reports whether s and other share region set and interval set.
func (s Spec) SameBasis(other Spec) bool {
	return s.SpatialResolution == other.SpatialResolution &&
		s.TemporalResolution == other.TemporalResolution
}

func (s Spec) String() string {
	return fmt.Sprintf("%s[%s/%s, %s]", s.Name, s.SpatialResolution, s.TemporalResolution, s.Units)
}

// Set is an insertion-ordered collection of Specs with unique names.
// The zero value is ready to use.
type Set struct {
	order []string
	specs map[string]Spec
}

// NewSet builds a Set from specs, failing on the first duplicate name.
func NewSet(specs ...Spec) (*Set, error) {
	s := &Set{}
	for _, spec := range specs {
		if err := s.Add(spec); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSet is NewSet for statically known specs; it panics on duplicates.
func MustSet(specs ...Spec) *Set {
	s, err := NewSet(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Add appends spec to the set.
func (s *Set) Add(spec Spec) error {
	if spec.Name == "" {
		return errors.New("port name must not be empty")
	}
	if s.specs == nil {
		s.specs = make(map[string]Spec)
	}
	if _, ok := s.specs[spec.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePort, spec.Name)
	}
	s.specs[spec.Name] = spec
	s.order = append(s.order, spec.Name)
	return nil
}

// Get returns the spec registered under name.
func (s *Set) Get(name string) (Spec, bool) {
	if s == nil {
		return Spec{}, false
	}
	spec, ok := s.specs[name]
	return spec, ok
}

// Has reports whether name is part of the set.
func (s *Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Names returns the port names in insertion order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Specs returns the specs in insertion order.
func (s *Set) Specs() []Spec {
	if s == nil {
		return nil
	}
	out := make([]Spec, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.specs[name])
	}
	return out
}

// Len returns the number of ports.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
