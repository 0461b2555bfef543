package resolution

import (
	"fmt"
	"sync"
)

type pair struct{ from, to string }

// store is the shared bookkeeping behind RegionRegister and IntervalRegister.
type store[S any] struct {
	kind string

	mu      sync.RWMutex
	sets    map[string]S
	gen     map[string]uint64
	order   []string
	weights map[pair][][]float64
}

func newStore[S any](kind string) *store[S] {
	return &store[S]{
		kind:    kind,
		sets:    make(map[string]S),
		gen:     make(map[string]uint64),
		weights: make(map[pair][][]float64),
	}
}

func (s *store[S]) put(name string, set S, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sets[name]; ok {
		if !replace {
			return fmt.Errorf("%w: %s %q", ErrDuplicateResolution, s.kind, name)
		}
		for key := range s.weights {
			if key.from == name || key.to == name {
				delete(s.weights, key)
			}
		}
	} else {
		s.order = append(s.order, name)
	}
	s.sets[name] = set
	s.gen[name]++
	return nil
}

func (s *store[S]) get(name string) (S, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[name]
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: %s %q", ErrUnknownResolution, s.kind, name)
	}
	return set, nil
}

func (s *store[S]) has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sets[name]
	return ok
}

func (s *store[S]) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// cached returns the weight matrix for (from, to), computing it at most once
// per registration of either set. A result computed from a set that was
// replaced meanwhile is returned but not cached.
func (s *store[S]) cached(from, to string, compute func(src, dst S) ([][]float64, error)) ([][]float64, error) {
	key := pair{from, to}

	s.mu.RLock()
	w, ok := s.weights[key]
	src, srcOK := s.sets[from]
	dst, dstOK := s.sets[to]
	srcGen, dstGen := s.gen[from], s.gen[to]
	s.mu.RUnlock()
	if ok {
		return w, nil
	}
	if !srcOK {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownResolution, s.kind, from)
	}
	if !dstOK {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownResolution, s.kind, to)
	}

	w, err := compute(src, dst)
	if err != nil {
		return nil, fmt.Errorf("computing %s weights %q -> %q: %w", s.kind, from, to, err)
	}

	s.mu.Lock()
	if s.gen[from] == srcGen && s.gen[to] == dstGen {
		s.weights[key] = w
	}
	s.mu.Unlock()
	return w, nil
}
