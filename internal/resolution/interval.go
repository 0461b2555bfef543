package resolution

import (
	"errors"
	"fmt"
)

// DefaultBaseYear is the reference year interval definitions are measured from.
const DefaultBaseYear = 2010

// IntervalDef is the textual definition of one interval: ISO-8601 offsets
// from the start of the base year.
type IntervalDef struct {
	Name  string
	Start string
	End   string
}

// Interval is a named span of hours within the base year. End may be
// smaller than Start, in which case the interval wraps the year end.
type Interval struct {
	Name  string
	Start int
	End   int
}

type span struct{ lo, hi int }

func (iv Interval) spans(yearHours int) []span {
	if iv.End >= iv.Start {
		return []span{{iv.Start, iv.End}}
	}
	return []span{{iv.Start, yearHours}, {0, iv.End}}
}

// Wraps reports whether the interval crosses the end of the year.
func (iv Interval) Wraps() bool {
	return iv.End < iv.Start
}

// IntervalSet is a named, ordered collection of intervals within one base year.
type IntervalSet struct {
	Name      string
	BaseYear  int
	Intervals []Interval

	yearHours int
	index     map[string]int
}

// NewIntervalSet parses defs relative to 1 January of baseYear.
func NewIntervalSet(name string, baseYear int, defs ...IntervalDef) (*IntervalSet, error) {
	if name == "" {
		return nil, errors.New("interval set name must not be empty")
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("interval set %q has no intervals", name)
	}
	ref := yearStart(baseYear)
	set := &IntervalSet{
		Name:      name,
		BaseYear:  baseYear,
		yearHours: hoursInYear(baseYear),
		index:     make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if _, ok := set.index[def.Name]; ok {
			return nil, fmt.Errorf("interval set %q: duplicate interval %q", name, def.Name)
		}
		start, err := ParseDuration(def.Start)
		if err != nil {
			return nil, fmt.Errorf("interval set %q, interval %q start: %w", name, def.Name, err)
		}
		end, err := ParseDuration(def.End)
		if err != nil {
			return nil, fmt.Errorf("interval set %q, interval %q end: %w", name, def.Name, err)
		}
		iv := Interval{Name: def.Name, Start: start.HoursFrom(ref), End: end.HoursFrom(ref)}
		if iv.Start < 0 || iv.Start >= set.yearHours || iv.End < 0 || iv.End > set.yearHours {
			return nil, fmt.Errorf("interval set %q, interval %q: [%d, %d) lies outside the %d hours of %d",
				name, def.Name, iv.Start, iv.End, set.yearHours, baseYear)
		}
		if iv.Start == iv.End {
			return nil, fmt.Errorf("interval set %q, interval %q has zero length", name, def.Name)
		}
		set.index[def.Name] = len(set.Intervals)
		set.Intervals = append(set.Intervals, iv)
	}
	return set, nil
}

// Len returns the number of intervals.
func (s *IntervalSet) Len() int { return len(s.Intervals) }

// Names returns interval names in canonical order.
func (s *IntervalSet) Names() []string {
	names := make([]string, len(s.Intervals))
	for i, iv := range s.Intervals {
		names[i] = iv.Name
	}
	return names
}

// Index returns the canonical position of the named interval.
func (s *IntervalSet) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Hours returns the length of an interval in hours.
func (s *IntervalSet) Hours(iv Interval) int {
	total := 0
	for _, sp := range iv.spans(s.yearHours) {
		total += sp.hi - sp.lo
	}
	return total
}

func overlapHours(a, b []span) int {
	total := 0
	for _, x := range a {
		for _, y := range b {
			lo, hi := max(x.lo, y.lo), min(x.hi, y.hi)
			if hi > lo {
				total += hi - lo
			}
		}
	}
	return total
}

// intervalWeights returns w where w[i][j] is the share of src interval i
// that falls inside dst interval j.
func intervalWeights(src, dst *IntervalSet) ([][]float64, error) {
	if src.BaseYear != dst.BaseYear {
		return nil, fmt.Errorf("interval sets %q and %q use different base years (%d, %d)",
			src.Name, dst.Name, src.BaseYear, dst.BaseYear)
	}
	w := make([][]float64, len(src.Intervals))
	for i, a := range src.Intervals {
		w[i] = make([]float64, len(dst.Intervals))
		as := a.spans(src.yearHours)
		total := float64(src.Hours(a))
		for j, b := range dst.Intervals {
			w[i][j] = float64(overlapHours(as, b.spans(dst.yearHours))) / total
		}
	}
	return w, nil
}

// IntervalRegister holds the interval sets known to a run.
type IntervalRegister struct {
	baseYear int
	store    *store[*IntervalSet]
}

// NewIntervalRegister creates an empty register for the given base year.
func NewIntervalRegister(baseYear int) *IntervalRegister {
	return &IntervalRegister{baseYear: baseYear, store: newStore[*IntervalSet]("interval set")}
}

// BaseYear returns the year all sets in the register are measured from.
func (r *IntervalRegister) BaseYear() int { return r.baseYear }

// AddIntervalSet parses defs against the register's base year and registers
// the resulting set.
func (r *IntervalRegister) AddIntervalSet(name string, defs ...IntervalDef) error {
	set, err := NewIntervalSet(name, r.baseYear, defs...)
	if err != nil {
		return err
	}
	return r.Register(set)
}

// Register adds set, failing if the name is already taken.
func (r *IntervalRegister) Register(set *IntervalSet) error {
	if err := r.checkYear(set); err != nil {
		return err
	}
	return r.store.put(set.Name, set, false)
}

// Replace adds or overwrites set and drops cached weights involving it.
func (r *IntervalRegister) Replace(set *IntervalSet) error {
	if err := r.checkYear(set); err != nil {
		return err
	}
	return r.store.put(set.Name, set, true)
}

func (r *IntervalRegister) checkYear(set *IntervalSet) error {
	if set == nil {
		return errors.New("interval set must not be nil")
	}
	if set.BaseYear != r.baseYear {
		return fmt.Errorf("interval set %q uses base year %d, register uses %d", set.Name, set.BaseYear, r.baseYear)
	}
	return nil
}

// Get returns the named set or ErrUnknownResolution.
func (r *IntervalRegister) Get(name string) (*IntervalSet, error) {
	return r.store.get(name)
}

// Has reports whether name is registered.
func (r *IntervalRegister) Has(name string) bool { return r.store.has(name) }

// Names returns registered set names in registration order.
func (r *IntervalRegister) Names() []string { return r.store.names() }

// Weights returns the cached source x target weight matrix. Callers must not
// modify the returned slices.
func (r *IntervalRegister) Weights(from, to string) ([][]float64, error) {
	return r.store.cached(from, to, intervalWeights)
}
