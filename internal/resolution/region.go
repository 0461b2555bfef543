package resolution

import (
	"errors"
	"fmt"
)

// Region is a named area.
type Region struct {
	Name  string
	Shape Polygon
}

// RegionSet is a named, ordered collection of regions.
type RegionSet struct {
	Name    string
	Regions []Region

	index map[string]int
}

// NewRegionSet validates regions and returns the set.
func NewRegionSet(name string, regions ...Region) (*RegionSet, error) {
	if name == "" {
		return nil, errors.New("region set name must not be empty")
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("region set %q has no regions", name)
	}
	set := &RegionSet{Name: name, index: make(map[string]int, len(regions))}
	for _, r := range regions {
		if _, ok := set.index[r.Name]; ok {
			return nil, fmt.Errorf("region set %q: duplicate region %q", name, r.Name)
		}
		if len(r.Shape) < 3 {
			return nil, fmt.Errorf("region set %q, region %q: polygon needs at least 3 points", name, r.Name)
		}
		if r.Shape.Area() < geomEpsilon {
			return nil, fmt.Errorf("region set %q, region %q: polygon has zero area", name, r.Name)
		}
		set.index[r.Name] = len(set.Regions)
		set.Regions = append(set.Regions, r)
	}
	return set, nil
}

// Len returns the number of regions.
func (s *RegionSet) Len() int { return len(s.Regions) }

// Names returns region names in canonical order.
func (s *RegionSet) Names() []string {
	names := make([]string, len(s.Regions))
	for i, r := range s.Regions {
		names[i] = r.Name
	}
	return names
}

// Index returns the canonical position of the named region.
func (s *RegionSet) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// regionWeights returns w where w[i][j] is the share of src region i's area
// that lies in dst region j.
func regionWeights(src, dst *RegionSet) ([][]float64, error) {
	w := make([][]float64, len(src.Regions))
	for i, a := range src.Regions {
		w[i] = make([]float64, len(dst.Regions))
		total := a.Shape.Area()
		for j, b := range dst.Regions {
			w[i][j] = IntersectionArea(a.Shape, b.Shape) / total
		}
	}
	return w, nil
}

// RegionRegister holds the region sets known to a run.
type RegionRegister struct {
	store *store[*RegionSet]
}

// NewRegionRegister creates an empty register.
func NewRegionRegister() *RegionRegister {
	return &RegionRegister{store: newStore[*RegionSet]("region set")}
}

// Register adds set, failing if the name is already taken.
func (r *RegionRegister) Register(set *RegionSet) error {
	if set == nil {
		return errors.New("region set must not be nil")
	}
	return r.store.put(set.Name, set, false)
}

// Replace adds or overwrites set and drops cached weights involving it.
func (r *RegionRegister) Replace(set *RegionSet) error {
	if set == nil {
		return errors.New("region set must not be nil")
	}
	return r.store.put(set.Name, set, true)
}

// Get returns the named set or ErrUnknownResolution.
func (r *RegionRegister) Get(name string) (*RegionSet, error) {
	return r.store.get(name)
}

// Has reports whether name is registered.
func (r *RegionRegister) Has(name string) bool { return r.store.has(name) }

// Names returns registered set names in registration order.
func (r *RegionRegister) Names() []string { return r.store.names() }

// Weights returns the cached source x target weight matrix. Callers must not
// modify the returned slices.
func (r *RegionRegister) Weights(from, to string) ([][]float64, error) {
	return r.store.cached(from, to, regionWeights)
}
